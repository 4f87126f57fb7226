package unformat

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// FormatSpec is the decoded form of the text after the colon in a field,
// following the grammar
//
//	[[fill]align][sign][0][width][.precision][type]
//
// The sign is accepted and dropped; numeric fields always allow one.
type FormatSpec struct {
	Fill      rune // 0 if not given
	Align     byte // one of '<', '>', '=', '^', or 0 if not given
	ZeroPad   bool
	Width     int // -1 if not given
	Precision int // -1 if not given
	Type      string
}

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '=' || r == '^'
}

// ParseFormatSpec decodes spec. The type tag, if any, must be a built-in
// type, a strftime-style directive string, or a key of extra.
func ParseFormatSpec(spec string, extra map[string]Converter) (FormatSpec, error) {
	fs := FormatSpec{Width: -1, Precision: -1}
	s := spec

	if s != "" {
		r0, n0 := utf8.DecodeRuneInString(s)
		if isAlign(r0) {
			fs.Align = byte(r0)
			s = s[n0:]
		} else if r1, n1 := utf8.DecodeRuneInString(s[n0:]); n1 > 0 && isAlign(r1) {
			fs.Fill = r0
			fs.Align = byte(r1)
			s = s[n0+n1:]
		}
	}

	if s != "" && (s[0] == '+' || s[0] == '-' || s[0] == ' ') {
		s = s[1:]
	}

	if s != "" && s[0] == '0' {
		fs.ZeroPad = true
		s = s[1:]
	}

	digits := func() string {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		d := s[:i]
		s = s[i:]
		return d
	}

	if d := digits(); d != "" {
		w, err := strconv.Atoi(d)
		if err != nil {
			return FormatSpec{}, fmt.Errorf("%w: width %q", ErrInvalidFormatSpec, d)
		}
		fs.Width = w
	}

	if s != "" && s[0] == '.' {
		s = s[1:]
		if d := digits(); d != "" {
			p, err := strconv.Atoi(d)
			if err != nil {
				return FormatSpec{}, fmt.Errorf("%w: precision %q", ErrInvalidFormatSpec, d)
			}
			fs.Precision = p
		}
	}

	fs.Type = s
	if fs.Type == "" {
		if fs.Width > 0 && fs.Precision > 0 && fs.Width > fs.Precision {
			return FormatSpec{}, fmt.Errorf("%w: width %d exceeds precision %d", ErrInvalidFormatSpec, fs.Width, fs.Precision)
		}
		return fs, nil
	}
	if _, ok := extra[fs.Type]; ok {
		return fs, nil
	}
	if _, ok := builtinTypes[fs.Type]; ok {
		return fs, nil
	}
	if isStrftimeType(fs.Type) {
		return fs, nil
	}
	return FormatSpec{}, fmt.Errorf("%w: type %q", ErrInvalidFormatSpec, fs.Type)
}
