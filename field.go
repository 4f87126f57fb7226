package unformat

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
)

// maxFoldWidth bounds how far a folded group identifier is widened while
// looking for a free one.
const maxFoldWidth = 16

// compiler holds the state of one template compilation. Every capturing
// group written into the expression is counted in groups, so the number
// of the group opened next is always groups+1.
type compiler struct {
	template      string
	extra         map[string]Converter
	caseSensitive bool

	groups int

	fixedNames []string // raw names of fixed fields, in order
	fixed      []int    // group number of each fixed field
	named      []string // group identifiers of named fields, in order

	identToName map[string]string
	nameToIdent map[string]string
	identGroup  map[string]int
	nameSpec    map[string]string // spec text of each name's first occurrence

	convs    map[int]convertMatch // keyed by group number
	literals []string             // literal runs, for the prefilter
}

func newCompiler(template string, o *options) *compiler {
	return &compiler{
		template:      template,
		extra:         o.extraTypes,
		caseSensitive: o.caseSensitive,
		identToName:   make(map[string]string),
		nameToIdent:   make(map[string]string),
		identGroup:    make(map[string]int),
		nameSpec:      make(map[string]string),
		convs:         make(map[int]convertMatch),
	}
}

func (c *compiler) fieldError(field string, err error) error {
	return &CompileError{Template: c.template, Field: field, Err: err}
}

// isNamed reports whether a field name refers to a named field: one whose
// first character is a letter.
func isNamed(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return name != "" && unicode.IsLetter(r)
}

// field compiles one "{...}" token into an expression fragment.
func (c *compiler) field(token string) (string, error) {
	body := token[1 : len(token)-1]
	name, spec, _ := strings.Cut(body, ":")

	group := c.groups + 1
	if isNamed(name) {
		if first, seen := c.nameSpec[name]; seen {
			if first != spec {
				return "", c.fieldError(body, fmt.Errorf("%w: first seen as {%s:%s}", ErrRepeatedName, name, first))
			}
			// The repeat must match the same text; it opens no group.
			return fmt.Sprintf(`(?:\%d)`, c.identGroup[c.nameToIdent[name]]), nil
		}
		if err := c.checkNesting(name); err != nil {
			return "", c.fieldError(body, err)
		}
		ident, err := c.groupIdent(name)
		if err != nil {
			return "", c.fieldError(body, err)
		}
		c.nameSpec[name] = spec
		c.named = append(c.named, ident)
		c.identGroup[ident] = group
	} else {
		c.fixedNames = append(c.fixedNames, name)
		c.fixed = append(c.fixed, group)
	}

	if spec == "" {
		c.groups++
		return "(.+?)", nil
	}

	fs, err := ParseFormatSpec(spec, c.extra)
	if err != nil {
		return "", c.fieldError(body, err)
	}

	s, inner, conv, numeric, err := c.typeFragment(fs, group)
	if err != nil {
		return "", c.fieldError(body, err)
	}

	align, fill := fs.Align, fs.Fill
	if numeric {
		if align == '=' {
			if fill == 0 {
				fill = '0'
			}
			s = quoteRune(fill) + "*" + s
			if fill != '0' && conv != nil {
				conv = stripFill(conv, fill)
			}
		}
		s = "[-+ ]?" + s
	}
	if fill == 0 {
		fill = ' '
	}

	// Only the value is captured; padding added below stays outside.
	s = "(" + s + ")"
	c.groups += 1 + inner
	if conv != nil {
		c.convs[group] = conv
	}

	if fs.Width >= 0 && align == 0 {
		align = '>'
	}
	f := quoteRune(fill)
	switch align {
	case '<':
		s = s + f + "*"
	case '>':
		s = f + "*" + s
	case '^':
		s = f + "*" + s + f + "*"
	}
	return s, nil
}

// typeFragment returns the value fragment for fs, the number of capturing
// groups the fragment opens, and the converter bound to the field's group.
func (c *compiler) typeFragment(fs FormatSpec, group int) (s string, inner int, conv convertMatch, numeric bool, err error) {
	t := fs.Type
	if cv, ok := c.extra[t]; ok {
		s = cv.Pattern
		if s == "" {
			s = ".+?"
		}
		return "(?:" + s + ")", cv.GroupCount, cv.bind(), isNumericType(t), nil
	}
	if rule, ok := builtinTypes[t]; ok {
		if rule.bind != nil {
			conv = rule.bind(group)
		}
		return rule.pattern(fs), rule.groups, conv, rule.numeric, nil
	}
	if t != "" {
		// ParseFormatSpec only lets strftime layouts through here.
		l, err := compileStrftime(t, c.caseSensitive)
		if err != nil {
			return "", 0, nil, false, err
		}
		return l.pattern, 0, l.convert, false, nil
	}

	switch {
	case fs.Precision > 0 && fs.Width > 0:
		s = fmt.Sprintf(".{%d,%d}?", fs.Width, fs.Precision)
	case fs.Precision > 0:
		s = fmt.Sprintf(".{1,%d}?", fs.Precision)
	case fs.Width > 0:
		s = fmt.Sprintf(".{%d,}?", fs.Width)
	default:
		s = ".+?"
	}
	return s, 0, nil, false, nil
}

func quoteRune(r rune) string {
	return coregex.QuoteMeta(string(r))
}

// stripFill removes "=" alignment padding between the sign and the digits
// so that converters only see the number.
func stripFill(conv convertMatch, fill rune) convertMatch {
	return func(text string, m *regexp2.Match) (any, error) {
		s := strings.TrimLeft(text, " ")
		sign := ""
		if s != "" && (s[0] == '-' || s[0] == '+') {
			sign, s = s[:1], s[1:]
		}
		return conv(sign+strings.TrimLeft(s, string(fill)), m)
	}
}

// checkNesting rejects a name whose path is a strict prefix of an earlier
// name's path, or the other way round. Such a field would hold a value
// and a nested map at once.
func (c *compiler) checkNesting(name string) error {
	path := namePath(name)
	for prev := range c.nameSpec {
		other := namePath(prev)
		short, long := path, other
		if len(short) > len(long) {
			short, long = long, short
		}
		if len(short) == len(long) || !slices.Equal(short, long[:len(short)]) {
			continue
		}
		return fmt.Errorf("%w: %q and %q nest into each other", ErrGroupNaming, prev, name)
	}
	return nil
}

// groupIdent derives a unique identifier for a named field. The
// structural characters of dotted and bracketed names are folded to
// underscores; on collision the fold (and any underscore already in the
// name) is widened until the identifier is free.
func (c *compiler) groupIdent(name string) (string, error) {
	foldable := strings.ContainsAny(name, ".[]-_")
	for width := 1; width <= maxFoldWidth; width++ {
		fold := strings.Repeat("_", width)
		ident := strings.Map(func(r rune) rune {
			if strings.ContainsRune(".[]-", r) {
				return '_'
			}
			return r
		}, name)
		if width > 1 {
			ident = strings.ReplaceAll(ident, "_", fold)
		}
		if !validIdent(ident) {
			return "", fmt.Errorf("%w: %q folds to %q", ErrGroupNaming, name, ident)
		}
		if _, taken := c.identToName[ident]; !taken {
			c.identToName[ident] = name
			c.nameToIdent[name] = ident
			return ident, nil
		}
		if !foldable {
			break
		}
	}
	return "", fmt.Errorf("%w: no free identifier for %q", ErrGroupNaming, name)
}

func validIdent(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return s != ""
}
