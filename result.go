package unformat

import (
	"fmt"
	"strconv"

	"github.com/dlclark/regexp2"
)

// A Span is the rune offsets [Start, End) of a field's value in the
// matched text. Padding consumed by alignment is not included.
type Span struct {
	Start, End int
}

// A Result holds the values extracted by one match.
//
// Named fields with dotted or bracketed names are nested: "a.b" and
// "a[b]" both produce Named["a"].(map[string]any)["b"]. NamedSpans is
// keyed by the names as written in the template.
type Result struct {
	Fixed      []any
	Named      map[string]any
	FixedSpans []Span
	NamedSpans map[string]Span
}

// Index returns the i'th fixed value, or nil if there is none.
func (r *Result) Index(i int) any {
	if i < 0 || i >= len(r.Fixed) {
		return nil
	}
	return r.Fixed[i]
}

// Lookup returns the named value stored under the top-level name.
func (r *Result) Lookup(name string) (any, bool) {
	v, ok := r.Named[name]
	return v, ok
}

// Span returns the span of a fixed field (key is an int) or of a named
// field (key is the name as written in the template).
func (r *Result) Span(key any) (Span, bool) {
	switch k := key.(type) {
	case int:
		if k < 0 || k >= len(r.FixedSpans) {
			return Span{}, false
		}
		return r.FixedSpans[k], true
	case string:
		s, ok := r.NamedSpans[k]
		return s, ok
	}
	return Span{}, false
}

func (r *Result) String() string {
	return fmt.Sprintf("<Result %v %v>", r.Fixed, r.Named)
}

// A Match is a successful match whose values have not been converted yet.
type Match struct {
	parser *Parser
	m      *regexp2.Match
}

// Evaluate converts the match into a Result.
func (m *Match) Evaluate() (*Result, error) {
	return m.parser.evalMatch(m.m)
}

// Span returns the rune offsets of the whole match.
func (m *Match) Span() Span {
	return Span{m.m.Index, m.m.Index + m.m.Length}
}

// Text returns the matched text.
func (m *Match) Text() string {
	return m.m.String()
}

func (p *Parser) evalMatch(m *regexp2.Match) (*Result, error) {
	r := &Result{
		Fixed:      make([]any, len(p.fixed)),
		FixedSpans: make([]Span, len(p.fixed)),
		Named:      make(map[string]any),
		NamedSpans: make(map[string]Span, len(p.named)),
	}
	for i, group := range p.fixed {
		v, span, err := p.field(m, group, "#"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		r.Fixed[i] = v
		r.FixedSpans[i] = span
	}
	for _, ident := range p.named {
		name := p.identToName[ident]
		v, span, err := p.field(m, p.identGroup[ident], name)
		if err != nil {
			return nil, err
		}
		setPath(r.Named, namePath(name), v)
		r.NamedSpans[name] = span
	}
	return r, nil
}

// field reads and converts the value of one field group.
func (p *Parser) field(m *regexp2.Match, group int, label string) (any, Span, error) {
	g := m.GroupByNumber(group)
	if g == nil || len(g.Captures) == 0 {
		return nil, Span{-1, -1}, nil
	}
	text := g.String()
	span := Span{g.Index, g.Index + g.Length}
	conv, ok := p.convs[group]
	if !ok {
		return text, span, nil
	}
	v, err := conv(text, m)
	if err != nil {
		return nil, span, &ConversionError{Field: label, Text: text, Err: err}
	}
	return v, span, nil
}

// namePath splits a field name into its nesting path:
// "a.b[c][d]" is [a b c d]. Bracketed keys are taken verbatim.
func namePath(name string) []string {
	var path []string
	start := 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.':
			path = append(path, name[start:i])
			start = i + 1
		case '[':
			end := i + 1
			for end < len(name) && name[end] != ']' {
				end++
			}
			if end == len(name) {
				// Unterminated; keep the rest as part of the key.
				i = end
				continue
			}
			if i > start || len(path) == 0 {
				path = append(path, name[start:i])
			}
			path = append(path, name[i+1:end])
			i = end
			start = end + 1
			if start < len(name) && name[start] == '.' {
				i++
				start++
			}
		}
	}
	if start < len(name) || len(path) == 0 {
		path = append(path, name[start:])
	}
	return path
}

// setPath stores v at path in dst, creating intermediate maps.
func setPath(dst map[string]any, path []string, v any) {
	for _, k := range path[:len(path)-1] {
		next, ok := dst[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[k] = next
		}
		dst = next
	}
	dst[path[len(path)-1]] = v
}
