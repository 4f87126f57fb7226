package unformat

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInto(t *testing.T) {
	type stringInt struct {
		S string
		x string
		I int
	}
	type ints struct {
		I   int
		I8  int8
		I16 int16
		I32 int32
		I64 int64
	}
	type uints struct {
		U   uint
		U8  uint8
		U16 uint16
		U32 uint32
		U64 uint64
	}
	type myString string
	type stringBytes struct {
		S myString
		B []byte
	}
	type unmarshaler struct {
		S string
		T time.Time
	}
	type tagged struct {
		When  time.Time `unformat:"when"`
		Count float64   `unformat:"n"`
	}
	type person struct {
		Name string
		Age  uint8
	}
	type nested struct {
		P person
	}
	type exact struct {
		Big *big.Int
		Dec decimal.Decimal
		F32 float32
	}
	for _, tt := range []struct {
		in       string
		v        any
		template string
		want     any
	}{
		{
			"[foo, 3]",
			new(stringInt),
			"[{s:w}, {i:d}]",
			&stringInt{S: "foo", I: 3},
		},
		{
			"-1, -2, -3, -4, -5",
			new(ints),
			"{i:d}, {i8:d}, {i16:d}, {i32:d}, {i64:d}",
			&ints{-1, -2, -3, -4, -5},
		},
		{
			"1, 2, 3, 4, 5",
			new(uints),
			"{u:d}, {u8:d}, {u16:d}, {u32:d}, {u64:d}",
			&uints{1, 2, 3, 4, 5},
		},
		{
			"hello world",
			new(stringBytes),
			"{s:w} {b:w}",
			&stringBytes{"hello", []byte("world")},
		},
		{
			"date = 2018-12-15T00:00:00Z",
			new(unmarshaler),
			"{s:w} = {t}",
			&unmarshaler{"date", time.Date(2018, 12, 15, 0, 0, 0, 0, time.UTC)},
		},
		{
			"a b 1",
			new(stringInt),
			"{s} {} {i:d}",
			&stringInt{S: "a", I: 1},
		},
		{
			"2018-12-15 x7",
			new(tagged),
			"{when:ti} x{n:d}",
			&tagged{time.Date(2018, 12, 15, 0, 0, 0, 0, time.UTC), 7},
		},
		{
			"Ann (42)",
			new(nested),
			"{p.name} ({p[age]:d})",
			&nested{person{"Ann", 42}},
		},
		{
			"123456789012345678901234567890 1.50 2.5",
			new(exact),
			"{big:d} {dec:F} {f32:f}",
			&exact{
				Big: func() *big.Int { b, _ := new(big.Int).SetString("123456789012345678901234567890", 10); return b }(),
				Dec: decimal.RequireFromString("1.50"),
				F32: 2.5,
			},
		},
	} {
		if err := ParseInto(tt.template, tt.in, tt.v); err != nil {
			t.Errorf("ParseInto(%q, %q, %T): %s", tt.template, tt.in, tt.v, err)
			continue
		}
		if !reflect.DeepEqual(tt.v, tt.want) {
			t.Errorf("ParseInto(%q, %q, %T): got %#v; want %#v",
				tt.template, tt.in, tt.v, tt.v, tt.want)
		}
	}
}

func TestParseIntoErrors(t *testing.T) {
	var small struct{ N int8 }
	assert.Error(t, ParseInto("{n:d}", "300", &small))

	var unsigned struct{ N uint }
	assert.Error(t, ParseInto("{n:d}", "-1", &unsigned))

	var skipped struct {
		Secret string `unformat:"-"`
	}
	assert.Error(t, ParseInto("{secret}", "x", &skipped))

	var unsupported struct {
		N  int
		Ch chan int
	}
	assert.ErrorContains(t, ParseInto("{n:d}", "1", &unsupported), "unsupported type: chan int")

	var wrongKind struct{ N int }
	assert.Error(t, ParseInto("{n}", "x", &wrongKind))

	var missing struct{ A string }
	assert.Error(t, ParseInto("{b}", "x", &missing))

	assert.Error(t, ParseInto("{a}", "x", missing))
	var notStruct int
	assert.Error(t, ParseInto("{a}", "x", &notStruct))

	err := ParseInto("{a:d}", "x", &missing)
	assert.ErrorIs(t, err, ErrNoMatch)

	assert.Panics(t, func() { MustParseInto("{a:d}", "x", &missing) })
}

func TestDecodeIgnoresFixed(t *testing.T) {
	r, err := Parse("{} {a}", "skip keep")
	require.NoError(t, err)
	require.NotNil(t, r)
	var v struct{ A string }
	require.NoError(t, r.Decode(&v))
	assert.Equal(t, "keep", v.A)
}
