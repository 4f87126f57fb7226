package unformat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll(t *testing.T) {
	it, err := FindAll(">{}<", "<p>the <b>bold</b> text</p>")
	require.NoError(t, err)
	var b strings.Builder
	var spans []Span
	for it.Next() {
		b.WriteString(it.Result().Fixed[0].(string))
		spans = append(spans, it.Match().Span())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, "the bold text", b.String())
	assert.Equal(t, []Span{{2, 8}, {9, 15}, {17, 24}}, spans)

	// Exhausted iterators stay exhausted.
	assert.False(t, it.Next())
	assert.Nil(t, it.Result())
}

func TestFindAllEmptyMatches(t *testing.T) {
	it, err := FindAll("", "ab")
	require.NoError(t, err)
	var spans []Span
	for it.Next() {
		assert.Empty(t, it.Result().Fixed)
		spans = append(spans, it.Match().Span())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []Span{{0, 0}, {1, 1}, {2, 2}}, spans)
}

func TestFindAllRange(t *testing.T) {
	p := MustCompile("{:d}")
	results, err := p.FindAllRange("1 2 3 4", 2, 5).Collect()
	require.NoError(t, err)
	var got []any
	for _, r := range results {
		got = append(got, r.Fixed[0])
	}
	assert.Equal(t, []any{int64(2), int64(3)}, got)

	results, err = p.FindAllRange("1 2 3 4", 5, 2).Collect()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindAllLazy(t *testing.T) {
	it, err := FindAll("{:d}", "1 2", EvaluateResult(false))
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Nil(t, it.Result())
	r, err := it.Match().Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, r.Fixed)

	// Collect evaluates what is left.
	rest, err := it.Collect()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, []any{int64(2)}, rest[0].Fixed)
}

func TestFindAllConversionError(t *testing.T) {
	word := WithPattern(`\w+`, func(s string) (any, error) {
		if s == "bad" {
			return nil, errors.New("bad word")
		}
		return s, nil
	})
	p := MustCompile("{:word}", WithExtraTypes(map[string]Converter{"word": word}))

	results, err := p.FindAll("ok bad ok").Collect()
	assert.ErrorIs(t, err, ErrConversion)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Fixed[0])

	// Lazy iteration only fails when the bad match is evaluated.
	lazy := MustCompile("{:word}", WithExtraTypes(map[string]Converter{"word": word}), EvaluateResult(false))
	it := lazy.FindAll("ok bad ok")
	n := 0
	for it.Next() {
		n++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 3, n)
}

func TestIteratorAll(t *testing.T) {
	p := MustCompile("{k}={v:d};")
	got := map[string]any{}
	for r, err := range p.FindAll("a=1;b=2;c=3;").All() {
		require.NoError(t, err)
		got[r.Named["k"].(string)] = r.Named["v"]
	}
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)}, got)

	// Breaking out early leaves the rest unread.
	it := p.FindAll("a=1;b=2;c=3;")
	for range it.All() {
		break
	}
	rest, err := it.Collect()
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	tooMany := MustCompile(strings.Repeat("{}", MaxFields+1))
	var errs []error
	for r, err := range tooMany.FindAll("x").All() {
		assert.Nil(t, r)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrTooManyFields)
}

func TestFindAllPrefilterMiss(t *testing.T) {
	p := MustCompile("id={:d}", CaseSensitive(true))
	results, err := p.FindAll("ID=1 ID=2").Collect()
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = p.FindAll("id=1 ID=2 id=3").Collect()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), results[1].Fixed[0])
}
