package unformat

import (
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
)

// templateTokens finds "{{", "}}" and field tokens, in that priority. A
// field name is a word optionally followed by ".attr" or "[key]" parts;
// the format spec after the colon runs to the closing brace.
var templateTokens = regexp2.MustCompile(`\{\{|\}\}|\{[\p{L}\p{N}_-]*(?:\.[\p{L}\p{N}_-]+|\[[^\]]+\])*(?::[^}]+)?\}`, regexp2.None)

// assemble walks the template and returns the full expression. Literal
// text between fields is escaped and also recorded for the prefilter.
func (c *compiler) assemble() (string, error) {
	var expr, lit strings.Builder
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		c.literals = append(c.literals, lit.String())
		expr.WriteString(coregex.QuoteMeta(lit.String()))
		lit.Reset()
	}

	// Token offsets are rune offsets.
	runes := []rune(c.template)
	last := 0
	m, err := templateTokens.FindRunesMatch(runes)
	for ; m != nil && err == nil; m, err = templateTokens.FindNextMatch(m) {
		lit.WriteString(string(runes[last:m.Index]))
		last = m.Index + m.Length
		switch tok := m.String(); tok {
		case "{{":
			lit.WriteByte('{')
		case "}}":
			lit.WriteByte('}')
		default:
			flush()
			frag, err := c.field(tok)
			if err != nil {
				return "", err
			}
			expr.WriteString(frag)
		}
	}
	if err != nil {
		return "", err
	}
	lit.WriteString(string(runes[last:]))
	flush()
	return expr.String(), nil
}

// prefilter holds one automaton per literal run of a case-sensitive
// template. Every run must occur somewhere in the text for the template
// to match, so a missing run rules the text out without running the
// backtracking engine.
type prefilter []*ahocorasick.Automaton

func buildPrefilter(literals []string) (prefilter, error) {
	var pf prefilter
	for _, l := range literals {
		b := ahocorasick.NewBuilder()
		b.AddPattern([]byte(l))
		auto, err := b.Build()
		if err != nil {
			return nil, err
		}
		pf = append(pf, auto)
	}
	return pf, nil
}

// mayMatch reports whether text contains every literal run.
func (pf prefilter) mayMatch(text string) bool {
	if len(pf) == 0 {
		return true
	}
	b := []byte(text)
	for _, auto := range pf {
		if !auto.IsMatch(b) {
			return false
		}
	}
	return true
}
