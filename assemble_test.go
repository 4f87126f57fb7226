package unformat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedFields(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "{f%d:d}", i)
	}
	return b.String()
}

func TestAssembleTokens(t *testing.T) {
	for _, tt := range []struct {
		template string
		fixed    int
		named    int
		repeats  int
		literals []string
	}{
		{typedFields(16), 0, 16, 0, nil},
		{typedFields(60), 0, 60, 0, nil},
		{strings.Repeat("{}", 101), 101, 0, 0, nil},
		{strings.Repeat("{x}", 40), 0, 1, 39, nil},
		{strings.Repeat("{:d},", 30), 30, 0, 0, []string{",", ",", ","}},
		{"{{{}}}", 1, 0, 0, []string{"{", "}"}},
		{"ünï {a} çödé {}", 1, 1, 0, []string{"ünï ", " çödé "}},
		{"{a[b c]x} {", 0, 0, 0, []string{"{a[b c]x} {"}},
	} {
		c := newCompiler(tt.template, newOptions(nil))
		expr, err := c.assemble()
		if !assert.NoError(t, err, tt.template) {
			continue
		}
		assert.Len(t, c.fixed, tt.fixed, tt.template)
		assert.Len(t, c.named, tt.named, tt.template)
		assert.Equal(t, tt.repeats, strings.Count(expr, `(?:\1)`), tt.template)
		if tt.literals == nil {
			assert.NotContains(t, expr, `\{`, tt.template)
			continue
		}
		if assert.GreaterOrEqual(t, len(c.literals), len(tt.literals), tt.template) {
			assert.Equal(t, tt.literals, c.literals[:len(tt.literals)], tt.template)
		}
	}
}

func TestLongTemplates(t *testing.T) {
	r, err := Parse(strings.Repeat("{x}", 40), strings.Repeat("ab", 40))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "ab", r.Named["x"])

	var text strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&text, "%d", i%10)
	}
	r, err = Parse(typedFields(16), text.String())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Len(t, r.Named, 16)
	assert.Equal(t, int64(5), r.Named["f15"])
}
