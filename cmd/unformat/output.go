package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cespare/unformat"
)

// A record is the printed form of one result. Values are reduced to
// types both encoders render faithfully.
type record struct {
	Input string            `json:"input" yaml:"input"`
	Fixed []any             `json:"fixed" yaml:"fixed"`
	Named map[string]any    `json:"named" yaml:"named"`
	Spans map[string][2]int `json:"spans" yaml:"spans"`
}

func newRecord(input string, r *unformat.Result) record {
	rec := record{
		Input: input,
		Fixed: make([]any, len(r.Fixed)),
		Named: plainMap(r.Named),
		Spans: make(map[string][2]int, len(r.FixedSpans)+len(r.NamedSpans)),
	}
	for i, v := range r.Fixed {
		rec.Fixed[i] = plain(v)
	}
	for i, s := range r.FixedSpans {
		rec.Spans[strconv.Itoa(i)] = [2]int{s.Start, s.End}
	}
	for name, s := range r.NamedSpans {
		rec.Spans[name] = [2]int{s.Start, s.End}
	}
	return rec
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return plainMap(x)
	case decimal.Decimal:
		return x.String()
	case *big.Int:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	return v
}

type printer interface {
	print(record) error
	flush() error
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return yamlPrinter{enc}, nil
	case "json":
		return jsonPrinter{json.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

type yamlPrinter struct{ enc *yaml.Encoder }

func (p yamlPrinter) print(r record) error { return p.enc.Encode(r) }
func (p yamlPrinter) flush() error         { return p.enc.Close() }

type jsonPrinter struct{ enc *json.Encoder }

func (p jsonPrinter) print(r record) error { return p.enc.Encode(r) }
func (p jsonPrinter) flush() error         { return nil }
