package unformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatSpec(t *testing.T) {
	extra := map[string]Converter{"shouty": Convert(nil)}
	for _, tt := range []struct {
		spec string
		want FormatSpec
	}{
		{"", FormatSpec{Width: -1, Precision: -1}},
		{">10", FormatSpec{Align: '>', Width: 10, Precision: -1}},
		{"*^20.5s", FormatSpec{Fill: '*', Align: '^', Width: 20, Precision: 5, Type: "s"}},
		{"+08.3f", FormatSpec{ZeroPad: true, Width: 8, Precision: 3, Type: "f"}},
		{"x=5d", FormatSpec{Fill: 'x', Align: '=', Width: 5, Precision: -1, Type: "d"}},
		{"é<5", FormatSpec{Fill: 'é', Align: '<', Width: 5, Precision: -1}},
		{" d", FormatSpec{Width: -1, Precision: -1, Type: "d"}},
		{".2", FormatSpec{Width: -1, Precision: 2}},
		{"3.3", FormatSpec{Width: 3, Precision: 3}},
		{"10.2f", FormatSpec{Width: 10, Precision: 2, Type: "f"}},
		{"05", FormatSpec{ZeroPad: true, Width: 5, Precision: -1}},
		{"<", FormatSpec{Align: '<', Width: -1, Precision: -1}},
		{"ti", FormatSpec{Width: -1, Precision: -1, Type: "ti"}},
		{"%", FormatSpec{Width: -1, Precision: -1, Type: "%"}},
		{"%Y-%m-%d", FormatSpec{Width: -1, Precision: -1, Type: "%Y-%m-%d"}},
		{"shouty", FormatSpec{Width: -1, Precision: -1, Type: "shouty"}},
		{"^shouty", FormatSpec{Align: '^', Width: -1, Precision: -1, Type: "shouty"}},
	} {
		got, err := ParseFormatSpec(tt.spec, extra)
		if !assert.NoError(t, err, "ParseFormatSpec(%q)", tt.spec) {
			continue
		}
		assert.Equal(t, tt.want, got, "ParseFormatSpec(%q)", tt.spec)
	}
}

func TestParseFormatSpecUnknownType(t *testing.T) {
	for _, spec := range []string{"zz", "<<", "5q", "shouty", "%%", "5.2", "*^9.3"} {
		_, err := ParseFormatSpec(spec, nil)
		if spec == "%%" {
			// Accepted here as a strftime layout; rejected when compiled.
			require.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidFormatSpec, "ParseFormatSpec(%q)", spec)
	}
}
