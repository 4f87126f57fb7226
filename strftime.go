package unformat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
)

// strftimeDirectives maps each supported directive to the fragment it
// matches. None of the fragments opens a capturing group.
var strftimeDirectives = map[byte]string{
	'a': `(?:Sun|Mon|Tue|Wed|Thu|Fri|Sat)`,
	'A': `(?:Sunday|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday)`,
	'b': `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`,
	'B': `(?:January|February|March|April|May|June|July|August|September|October|November|December)`,
	'd': `[0-9]{1,2}`,
	'f': `[0-9]{1,6}`,
	'H': `[0-9]{1,2}`,
	'I': `[0-9]{1,2}`,
	'j': `[0-9]{1,3}`,
	'm': `[0-9]{1,2}`,
	'M': `[0-9]{1,2}`,
	'p': `(?:AM|PM)`,
	'S': `[0-9]{1,2}`,
	'U': `[0-9]{1,2}`,
	'w': `[0-6]`,
	'W': `[0-9]{1,2}`,
	'y': `[0-9]{2}`,
	'Y': `[0-9]{4}`,
	'z': `(?:[+-][0-9]{2}:?[0-9]{2}|Z)`,
	'%': `%`,
}

const (
	strftimeDateDirectives = "aAbBdjmUwWyY"
	strftimeTimeDirectives = "HIMpSfz"
)

// isStrftimeType reports whether tag contains at least one strftime
// directive, such as "%Y-%m-%d".
func isStrftimeType(tag string) bool {
	for i := 0; i+1 < len(tag); i++ {
		if tag[i] != '%' {
			continue
		}
		if _, ok := strftimeDirectives[tag[i+1]]; ok {
			return true
		}
	}
	return false
}

// strftimeLayout is a compiled strftime type tag.
type strftimeLayout struct {
	pattern    string          // fragment for the field expression, no groups
	directives []byte          // directive letters in order, one group each in inner
	inner      *regexp2.Regexp // anchored re-parse of the field's text
	date, time bool
}

func compileStrftime(tag string, caseSensitive bool) (*strftimeLayout, error) {
	var outer, inner strings.Builder
	l := &strftimeLayout{}
	inner.WriteString(`\A`)
	for i := 0; i < len(tag); i++ {
		if tag[i] == '%' && i+1 < len(tag) {
			if frag, ok := strftimeDirectives[tag[i+1]]; ok {
				d := tag[i+1]
				i++
				outer.WriteString(frag)
				if d == '%' {
					inner.WriteString(frag)
					continue
				}
				inner.WriteString("(" + frag + ")")
				l.directives = append(l.directives, d)
				l.date = l.date || strings.IndexByte(strftimeDateDirectives, d) >= 0
				l.time = l.time || strings.IndexByte(strftimeTimeDirectives, d) >= 0
				continue
			}
		}
		lit := coregex.QuoteMeta(tag[i : i+1])
		outer.WriteString(lit)
		inner.WriteString(lit)
	}
	inner.WriteString(`\z`)
	if !l.date && !l.time {
		return nil, fmt.Errorf("%w: %q is neither a date nor a time", ErrInvalidFormatSpec, tag)
	}
	opts := regexp2.RegexOptions(regexp2.Singleline)
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(inner.String(), opts)
	if err != nil {
		return nil, err
	}
	l.pattern = "(?:" + outer.String() + ")"
	l.inner = re
	return l, nil
}

func (l *strftimeLayout) convert(text string, _ *regexp2.Match) (any, error) {
	m, err := l.inner.FindStringMatch(text)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%q does not fit the time layout", text)
	}

	year, month, day, yday := -1, time.January, 1, 0
	var clock clockTime
	hour12, ampm := -1, ""
	loc := time.UTC
	for i, d := range l.directives {
		s, _ := groupText(m, i+1)
		n, _ := strconv.Atoi(s)
		switch d {
		case 'Y':
			year = n
		case 'y':
			// POSIX pivot: 69-99 are 1900s, 00-68 are 2000s.
			if n >= 69 {
				year = 1900 + n
			} else {
				year = 2000 + n
			}
		case 'm':
			month = time.Month(n)
		case 'b', 'B':
			month = monthByName[strings.ToLower(s)]
		case 'd':
			day = n
		case 'j':
			yday = n
		case 'H':
			clock.hour = n
		case 'I':
			hour12 = n
		case 'M':
			clock.minute = n
		case 'S':
			clock.second = n
		case 'f':
			clock.nanos, _ = fractionNanos(s)
		case 'p':
			ampm = s
		case 'z':
			if loc, err = parseZone(s); err != nil {
				return nil, err
			}
		}
	}

	if hour12 >= 0 {
		clock.hour = hour12
		if ampm == "" {
			ampm = "AM"
		}
		clock.hour = adjustAMPM(clock.hour, ampm)
	}
	if year < 0 {
		year = time.Now().Year()
	}

	if !l.date {
		return clock.on(0, time.January, 1, loc)
	}
	if yday > 0 && !l.has('m', 'b', 'B', 'd') {
		if yday > time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() {
			return nil, fmt.Errorf("day of year %d out of range", yday)
		}
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, yday-1)
		month, day = t.Month(), t.Day()
	}
	return clock.on(year, month, day, loc)
}

func (l *strftimeLayout) has(ds ...byte) bool {
	for _, d := range l.directives {
		for _, want := range ds {
			if d == want {
				return true
			}
		}
	}
	return false
}
