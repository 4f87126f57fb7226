package unformat

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/shopspring/decimal"
)

// typeRule describes a built-in field type: the fragment it matches, the
// number of capturing groups that fragment opens, and how to bind its
// converter once the field's own group number is known.
type typeRule struct {
	numeric bool
	groups  int
	pattern func(fs FormatSpec) string
	bind    func(group int) convertMatch // nil keeps the matched text
}

func static(p string) func(FormatSpec) string {
	return func(FormatSpec) string { return p }
}

func simple(fn ConvertFunc) func(int) convertMatch {
	return func(int) convertMatch {
		return func(text string, _ *regexp2.Match) (any, error) { return fn(text) }
	}
}

const (
	floatPat = `[0-9]*\.[0-9]+`
	expPat   = `[eE][-+]?[0-9]+`
	nanInf   = `nan|NAN|inf|INF`
)

// builtinTypes is the fixed table of type tags. It is never modified.
var builtinTypes = map[string]typeRule{
	"d": {numeric: true, pattern: intPattern, bind: simple(intConverter(0))},
	"n": {
		numeric: true,
		pattern: static(`[0-9]{1,3}(?:[,.][0-9]{3})*`),
		bind:    simple(intConverter(10)),
	},
	"b": {numeric: true, pattern: static(`(?:0[bB])?[01]+`), bind: simple(intConverter(2))},
	"o": {numeric: true, pattern: static(`(?:0[oO])?[0-7]+`), bind: simple(intConverter(8))},
	// b is a hex digit, so a binary prefix has to be ruled out explicitly.
	"x": {numeric: true, pattern: static(`(?:0[xX]|(?!0[bB]))[0-9a-fA-F]+`), bind: simple(intConverter(16))},
	"%": {numeric: true, pattern: static(`[0-9]+(?:\.[0-9]+)?%`), bind: simple(parsePercent)},
	"f": {numeric: true, pattern: static(floatPat), bind: simple(parseFloat)},
	"F": {numeric: true, pattern: static(floatPat), bind: simple(parseDecimal)},
	"e": {
		numeric: true,
		pattern: static(`(?:` + floatPat + expPat + `|` + nanInf + `)`),
		bind:    simple(parseFloat),
	},
	"g": {
		numeric: true,
		pattern: static(`(?:` + floatPat + `(?:` + expPat + `)?|[0-9]+(?:` + expPat + `)?|` + nanInf + `)`),
		bind:    simple(parseFloat),
	},
	"l": {pattern: static(`[A-Za-z]+`)},
	"w": {pattern: static(`\w+`)},
	"W": {pattern: static(`\W+`)},
	"s": {pattern: static(`\s+`)},
	"S": {pattern: static(`\S+`)},
	"D": {pattern: static(`\D+`)},

	"ti": dateRule(isoDate),
	"tg": dateRule(globalDate),
	"ta": dateRule(usDate),
	"te": dateRule(emailDate),
	"th": dateRule(httpDate),
	"tc": dateRule(ctimeDate),
	"tt": dateRule(timeOfDay),
	"ts": dateRule(syslogDate),
}

// isNumericType reports whether fields of this tag accept a sign and "="
// alignment padding. Caller-supplied converters registered under a
// numeric tag keep this behaviour.
func isNumericType(tag string) bool {
	r, ok := builtinTypes[tag]
	return ok && r.numeric
}

func intPattern(fs FormatSpec) string {
	w := "+"
	if fs.Width > 0 {
		w = fmt.Sprintf("{1,%d}", fs.Width)
	}
	return fmt.Sprintf(`(?:[0-9]%[1]s|0[xX][0-9a-fA-F]%[1]s|0[bB][01]%[1]s|0[oO][0-7]%[1]s)`, w)
}

// intConverter parses integers in the given base. Base 0 detects 2, 8 or
// 16 from a 0b, 0o or 0x prefix and otherwise uses 10. Characters that are
// not digits of the base (prefix letters, thousands separators, padding)
// are dropped before parsing. Values that overflow int64 are returned as
// *big.Int.
func intConverter(base int) ConvertFunc {
	return func(text string) (any, error) {
		return parseInt(text, base)
	}
}

func parseInt(text string, base int) (any, error) {
	s := strings.TrimSpace(text)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if base == 0 {
		base = 10
		if len(s) > 2 && s[0] == '0' {
			switch s[1] {
			case 'b', 'B':
				base = 2
			case 'o', 'O':
				base = 8
			case 'x', 'X':
				base = 16
			}
		}
	}
	digits := strings.Map(func(r rune) rune {
		if digitValue(r) < base {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return nil, fmt.Errorf("no base %d digits in %q", base, text)
	}
	if neg {
		digits = "-" + digits
	}
	n, err := strconv.ParseInt(digits, base, 64)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid base %d integer %q", base, text)
	}
	return b, nil
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return 99
}

func parseFloat(text string) (any, error) {
	s := strings.TrimSpace(text)
	// ParseFloat rejects a signed NaN.
	if len(s) == 4 && (s[0] == '-' || s[0] == '+') && strings.EqualFold(s[1:], "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parsePercent(text string) (any, error) {
	s := strings.TrimSuffix(strings.TrimSpace(text), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f / 100, nil
}

func parseDecimal(text string) (any, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "+")
	return decimal.NewFromString(s)
}
