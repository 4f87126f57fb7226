// Package unformat extracts values from text using templates written in
// the brace syntax of format strings. It does the reverse of formatting:
//
//	r, err := unformat.Parse("It's {}, I love it!", "It's spam, I love it!")
//	// r.Fixed == []any{"spam"}
//
// A field is written {name:spec}. Fields whose name starts with a letter
// are named and land in Result.Named; all others are fixed and land in
// Result.Fixed in template order. Dotted and bracketed names nest:
// {person.name} and {person[name]} both fill Named["person"]["name"].
// A named field repeated with the same spec must match the same text
// again. Literal braces are written {{ and }}.
//
// The format spec follows the grammar
//
//	[[fill]align][sign][0][width][.precision][type]
//
// where type selects what the field matches and what it converts to:
//
//	d       integer, with optional 0b/0o/0x prefix            int64
//	n       integer with thousands separators                 int64
//	b o x   binary, octal, hex with optional matching prefix  int64
//	%       percentage                                        float64 (divided by 100)
//	f e g   fixed-point, exponent, general float              float64
//	F       fixed-point                                       decimal.Decimal
//	l       letters                                           string
//	w W     word / non-word characters                        string
//	s S     whitespace / non-whitespace                       string
//	D       non-digits                                        string
//	ti      ISO 8601                                          time.Time
//	te      RFC 2822 e-mail date                              time.Time
//	tg      day/month/year, optional time, AM/PM and zone     time.Time
//	ta      month/day/year, optional time, AM/PM and zone     time.Time
//	tc      ctime()                                           time.Time
//	th      HTTP log                                          time.Time
//	ts      Linux syslog, current year                        time.Time
//	tt      time of day                                       time.Time on 0000-01-01
//
// Integers that overflow int64 are returned as *big.Int. A type made of
// strftime directives, such as {:%Y-%m-%d %H:%M}, parses into a time.Time.
// Further types can be registered with WithExtraTypes.
//
// Matching folds case unless CaseSensitive(true) is given, and "."
// matches newlines. Offsets reported in spans and accepted by the Range
// functions count runes, not bytes.
//
// Parse and Search always convert the values they match. To defer
// conversion use ParseMatch or SearchMatch, which return a Match, or
// give EvaluateResult(false) to FindAll; EvaluateResult affects
// iterators only.
package unformat

import (
	"sync"
)

type cacheKey struct {
	template      string
	caseSensitive bool
	evaluate      bool
}

// parserCache holds parsers compiled by the package-level functions when
// no options beyond the case and evaluate flags are given.
var parserCache sync.Map

func cachedCompile(template string, opts []Option) (*Parser, error) {
	o := newOptions(opts)
	if !o.cacheable() {
		return compile(template, o)
	}
	key := cacheKey{template, o.caseSensitive, o.evaluate}
	if v, ok := parserCache.Load(key); ok {
		return v.(*Parser), nil
	}
	p, err := compile(template, o)
	if err != nil {
		return nil, err
	}
	v, _ := parserCache.LoadOrStore(key, p)
	return v.(*Parser), nil
}

// Parse matches text against the whole of template. It returns a nil
// Result and a nil error if the template does not match.
func Parse(template, text string, opts ...Option) (*Result, error) {
	p, err := cachedCompile(template, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(text)
}

// Search returns the first match of template anywhere in text, or nil.
func Search(template, text string, opts ...Option) (*Result, error) {
	return SearchRange(template, text, 0, -1, opts...)
}

// SearchRange is like Search but only considers the runes of text in
// [pos, endPos). A negative endPos means the end of text.
func SearchRange(template, text string, pos, endPos int, opts ...Option) (*Result, error) {
	p, err := cachedCompile(template, opts)
	if err != nil {
		return nil, err
	}
	return p.SearchRange(text, pos, endPos)
}

// FindAll returns an iterator over all non-overlapping matches of
// template in text.
func FindAll(template, text string, opts ...Option) (*Iterator, error) {
	return FindAllRange(template, text, 0, -1, opts...)
}

// FindAllRange is like FindAll but only considers the runes of text in
// [pos, endPos).
func FindAllRange(template, text string, pos, endPos int, opts ...Option) (*Iterator, error) {
	p, err := cachedCompile(template, opts)
	if err != nil {
		return nil, err
	}
	return p.FindAllRange(text, pos, endPos), nil
}
