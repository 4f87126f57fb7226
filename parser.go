package unformat

import (
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// MaxFields is the largest number of capturing fields a template may hold.
const MaxFields = 100

// A Parser is a compiled template. It is immutable and safe for
// concurrent use.
type Parser struct {
	template      string
	expression    string
	caseSensitive bool
	evaluate      bool
	timeout       time.Duration

	fixedNames  []string
	fixed       []int // group number per fixed field
	named       []string
	identToName map[string]string
	identGroup  map[string]int
	convs       map[int]convertMatch
	prefilter   prefilter

	// The anchored and unanchored forms of expression are built on first
	// use.
	full, search engineForm
}

type engineForm struct {
	once sync.Once
	re   *regexp2.Regexp
	err  error
}

// Compile compiles template. Errors about the field layout are reported
// here; ErrTooManyFields is reported by the first Parse, Search or FindAll.
func Compile(template string, opts ...Option) (*Parser, error) {
	return compile(template, newOptions(opts))
}

// MustCompile is like Compile except that it panics
// instead of returning a non-nil error.
func MustCompile(template string, opts ...Option) *Parser {
	p, err := Compile(template, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func compile(template string, o *options) (*Parser, error) {
	c := newCompiler(template, o)
	expr, err := c.assemble()
	if err != nil {
		return nil, err
	}
	p := &Parser{
		template:      template,
		expression:    expr,
		caseSensitive: o.caseSensitive,
		evaluate:      o.evaluate,
		timeout:       o.timeout,
		fixedNames:    c.fixedNames,
		fixed:         c.fixed,
		named:         c.named,
		identToName:   c.identToName,
		identGroup:    c.identGroup,
		convs:         c.convs,
	}
	if o.caseSensitive {
		if p.prefilter, err = buildPrefilter(c.literals); err != nil {
			return nil, &CompileError{Template: template, Err: err}
		}
	}
	if o.logger != nil {
		o.logger.Debug("compiled template",
			"template", template,
			"expression", expr,
			"groups", c.groups,
			"fixed", len(c.fixed),
			"named", len(c.named),
		)
	}
	return p, nil
}

// engine returns the anchored or unanchored engine form, building it on
// first use.
func (p *Parser) engine(anchored bool) (*regexp2.Regexp, error) {
	f, expr := &p.search, p.expression
	if anchored {
		f, expr = &p.full, `\A(?:`+p.expression+`)\z`
	}
	f.once.Do(func() {
		f.re, f.err = p.build(expr)
	})
	return f.re, f.err
}

func (p *Parser) build(expr string) (*regexp2.Regexp, error) {
	if n := len(p.fixed) + len(p.named); n > MaxFields {
		return nil, &CompileError{
			Template: p.template,
			Err:      fmt.Errorf("%w: %d fields, at most %d are supported", ErrTooManyFields, n, MaxFields),
		}
	}
	opts := regexp2.RegexOptions(regexp2.Singleline)
	if !p.caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, &CompileError{Template: p.template, Err: err}
	}
	if p.timeout > 0 {
		re.MatchTimeout = p.timeout
	}
	return re, nil
}

// Parse matches text against the whole template. It returns a nil Result
// and a nil error if the template does not match.
func (p *Parser) Parse(text string) (*Result, error) {
	m, err := p.ParseMatch(text)
	if m == nil || err != nil {
		return nil, err
	}
	return m.Evaluate()
}

// ParseMatch is like Parse but defers value conversion to Match.Evaluate.
func (p *Parser) ParseMatch(text string) (*Match, error) {
	re, err := p.engine(true)
	if err != nil {
		return nil, err
	}
	if !p.prefilter.mayMatch(text) {
		return nil, nil
	}
	m, err := re.FindStringMatch(text)
	if m == nil || err != nil {
		return nil, err
	}
	return &Match{parser: p, m: m}, nil
}

// Search returns the first match of the template anywhere in text.
func (p *Parser) Search(text string) (*Result, error) {
	return p.SearchRange(text, 0, -1)
}

// SearchRange is like Search but only considers the runes of text in
// [pos, endPos). A negative endPos means the end of text.
func (p *Parser) SearchRange(text string, pos, endPos int) (*Result, error) {
	m, err := p.SearchMatch(text, pos, endPos)
	if m == nil || err != nil {
		return nil, err
	}
	return m.Evaluate()
}

// SearchMatch is like SearchRange but defers value conversion to
// Match.Evaluate.
func (p *Parser) SearchMatch(text string, pos, endPos int) (*Match, error) {
	re, err := p.engine(false)
	if err != nil {
		return nil, err
	}
	if !p.prefilter.mayMatch(text) {
		return nil, nil
	}
	runes := []rune(text)
	pos, endPos, ok := clampRange(len(runes), pos, endPos)
	if !ok {
		return nil, nil
	}
	m, err := re.FindRunesMatchStartingAt(runes[:endPos], pos)
	if m == nil || err != nil {
		return nil, err
	}
	return &Match{parser: p, m: m}, nil
}

func clampRange(n, pos, endPos int) (int, int, bool) {
	if endPos < 0 || endPos > n {
		endPos = n
	}
	if pos < 0 {
		pos = 0
	}
	return pos, endPos, pos <= endPos
}

// FindAll returns an iterator over all non-overlapping matches of the
// template in text, left to right.
func (p *Parser) FindAll(text string) *Iterator {
	return p.FindAllRange(text, 0, -1)
}

// FindAllRange is like FindAll but only considers the runes of text in
// [pos, endPos). A negative endPos means the end of text.
func (p *Parser) FindAllRange(text string, pos, endPos int) *Iterator {
	return newIterator(p, text, pos, endPos)
}

// Template returns the template p was compiled from.
func (p *Parser) Template() string { return p.template }

// Expression returns the generated expression, without anchors.
func (p *Parser) Expression() string { return p.expression }

// FixedFields returns the names, usually empty, of the fixed fields in
// template order.
func (p *Parser) FixedFields() []string {
	return append([]string(nil), p.fixedNames...)
}

// NamedFields returns the names of the named fields in order of first
// occurrence.
func (p *Parser) NamedFields() []string {
	names := make([]string, len(p.named))
	for i, ident := range p.named {
		names[i] = p.identToName[ident]
	}
	return names
}

func (p *Parser) String() string {
	return fmt.Sprintf("<Parser %q>", p.template)
}
