package unformat

import (
	"log/slog"
	"maps"
	"time"
)

// An Option configures Compile and the top-level helpers.
type Option func(*options)

type options struct {
	extraTypes    map[string]Converter
	caseSensitive bool
	evaluate      bool
	logger        *slog.Logger
	timeout       time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{evaluate: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// cacheable reports whether a parser compiled with o depends only on the
// template and the case flag.
func (o *options) cacheable() bool {
	return len(o.extraTypes) == 0 && o.logger == nil && o.timeout == 0
}

// WithExtraTypes registers caller-supplied field types. A tag that names
// a built-in type replaces it. The map is copied.
func WithExtraTypes(types map[string]Converter) Option {
	types = maps.Clone(types)
	return func(o *options) {
		if o.extraTypes == nil {
			o.extraTypes = make(map[string]Converter, len(types))
		}
		maps.Copy(o.extraTypes, types)
	}
}

// CaseSensitive controls whether literal text and field patterns match
// case-sensitively. The default is to fold case.
func CaseSensitive(on bool) Option {
	return func(o *options) { o.caseSensitive = on }
}

// EvaluateResult controls whether iterators convert each match as they
// advance (the default) or leave conversion to Match.Evaluate. Parse and
// Search are not affected.
func EvaluateResult(on bool) Option {
	return func(o *options) { o.evaluate = on }
}

// WithLogger makes the compiler log the generated expression at debug
// level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMatchTimeout bounds the time the engine may spend on one match
// attempt. Zero means no limit.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}
