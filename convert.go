package unformat

import (
	"github.com/dlclark/regexp2"
)

// A ConvertFunc turns the text matched by a field into a value.
type ConvertFunc func(text string) (any, error)

// A Converter is a caller-supplied field type, registered under a tag with
// WithExtraTypes. A tag that names a built-in type replaces it.
//
// Pattern, if set, is the expression the field must match in place of the
// default ".+?". It is written in the engine's syntax and may only contain
// unnamed capturing groups; GroupCount must equal the number of them so
// that fields after this one stay aligned with their groups.
//
// Converters are values and are never modified after construction; the
// With methods return copies.
type Converter struct {
	Func       ConvertFunc
	Pattern    string
	GroupCount int
}

// Convert returns a Converter that applies fn to text matched by ".+?".
func Convert(fn ConvertFunc) Converter {
	return Converter{Func: fn}
}

// WithPattern returns a Converter that applies fn to text matched by
// pattern.
func WithPattern(pattern string, fn ConvertFunc) Converter {
	return Converter{Func: fn, Pattern: pattern}
}

// WithGroupCount returns a copy of c declaring that its pattern introduces
// n capturing groups.
func (c Converter) WithGroupCount(n int) Converter {
	c.GroupCount = n
	return c
}

// convertMatch is the bound form of every converter: it receives the text
// of the field's own group and the whole engine match so that date types
// can read their internal groups.
type convertMatch func(text string, m *regexp2.Match) (any, error)

func (c Converter) bind() convertMatch {
	if c.Func == nil {
		return nil
	}
	fn := c.Func
	return func(text string, _ *regexp2.Match) (any, error) {
		return fn(text)
	}
}

// groupText returns the text captured by engine group n, and whether the
// group took part in the match.
func groupText(m *regexp2.Match, n int) (string, bool) {
	g := m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return "", false
	}
	return g.String(), true
}
