package unformat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrftime(t *testing.T) {
	year := time.Now().Year()
	for _, tt := range []struct {
		template string
		text     string
		want     time.Time
	}{
		{"{:%Y-%m-%d}", "2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"{:%Y-%j}", "2024-060", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"{:%Y-%j}", "2023-365", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"{:%d/%b/%Y:%H:%M:%S %z}", "21/Nov/2011:00:07:11 +0000", time.Date(2011, 11, 21, 0, 7, 11, 0, time.UTC)},
		{"{:%Y-%m-%d %H:%M%z}", "2024-01-02 03:04+05:30", time.Date(2024, 1, 2, 3, 4, 0, 0, zone(5, 30))},
		{"{:%B %d, %Y}", "february 29, 2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"{:%a %b %d %Y}", "Thu Feb 29 2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"{:%I:%M %p}", "10:30 PM", time.Date(0, 1, 1, 22, 30, 0, 0, time.UTC)},
		{"{:%I:%M %p}", "12:15 AM", time.Date(0, 1, 1, 0, 15, 0, 0, time.UTC)},
		{"{:%H:%M:%S.%f}", "01:02:03.5", time.Date(0, 1, 1, 1, 2, 3, 500000000, time.UTC)},
		{"{:%y-%m-%d}", "69-01-01", time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"{:%y-%m-%d}", "68-01-01", time.Date(2068, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"{:%m/%d}", "02/03", time.Date(year, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"{:%Y}", "1999", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"{:%d%%%m}", "07%08", time.Date(year, 8, 7, 0, 0, 0, 0, time.UTC)},
	} {
		r, err := Parse(tt.template, tt.text)
		if !assert.NoError(t, err, "Parse(%q, %q)", tt.template, tt.text) {
			continue
		}
		if !assert.NotNil(t, r, "Parse(%q, %q): no match", tt.template, tt.text) {
			continue
		}
		got, ok := r.Fixed[0].(time.Time)
		if !assert.True(t, ok, "Parse(%q, %q): got %T", tt.template, tt.text, r.Fixed[0]) {
			continue
		}
		assert.True(t, tt.want.Equal(got), "Parse(%q, %q): got %s; want %s", tt.template, tt.text, got, tt.want)
	}
}

func TestStrftimeCaseSensitive(t *testing.T) {
	r, err := Parse("{:%B %d, %Y}", "february 29, 2024", CaseSensitive(true))
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = Parse("{:%B %d, %Y}", "February 29, 2024", CaseSensitive(true))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestStrftimeErrors(t *testing.T) {
	_, err := Compile("{:%%}")
	assert.ErrorIs(t, err, ErrInvalidFormatSpec)

	r, err := Parse("{:%Y-%j}", "2023-366")
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrConversion)

	r, err = Parse("{:%Y-%m-%d}", "2023-02-29")
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrConversion)
}

func TestIsStrftimeType(t *testing.T) {
	for _, tt := range []struct {
		tag  string
		want bool
	}{
		{"%Y", true},
		{"%d/%m", true},
		{"x%H", true},
		{"%", false},
		{"%q", false},
		{"ti", false},
	} {
		assert.Equal(t, tt.want, isStrftimeType(tt.tag), "isStrftimeType(%q)", tt.tag)
	}
}
