package unformat

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"sync"
)

// MustParseInto is like ParseInto except that it panics
// instead of returning a non-nil error.
func MustParseInto(template, text string, v any, opts ...Option) {
	if err := ParseInto(template, text, v, opts...); err != nil {
		panic(err)
	}
}

// ParseInto parses text with template and loads the named values into v,
// as Result.Decode does. It returns ErrNoMatch if the template does not
// match.
func ParseInto(template, text string, v any, opts ...Option) error {
	r, err := Parse(template, text, opts...)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrNoMatch
	}
	return r.Decode(v)
}

// Decode loads the named values of r into v.
//
// The target v must be a pointer to a value of struct type. Each named
// value is stored in the exported field whose `unformat` tag equals the
// name, or failing that whose name equals it ignoring case. A value is
// stored:
//
//   - directly, if its type is assignable to the field;
//   - through encoding.TextUnmarshaler, if the value is a string and the
//     field (or a pointer to it) implements it;
//   - by conversion, for integer, float and string kinds, failing if an
//     integer does not fit;
//   - recursively, if the value is a nested name map and the field is a
//     struct.
//
// Named values with no target field are an error.
func (r *Result) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return errors.New("unformat: Decode requires pointer target")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errors.New("unformat: Decode target must be a pointer to struct value")
	}
	return decodeStruct(r.Named, rv)
}

var decoderCache sync.Map

func loadDecoder(rt reflect.Type) (*decoder, error) {
	if v, ok := decoderCache.Load(rt); ok {
		return v.(*decoder), nil
	}
	d, err := newDecoder(rt)
	if err != nil {
		return nil, err
	}
	decoderCache.LoadOrStore(rt, d)
	return d, nil
}

type decoder struct {
	byTag  map[string]*fieldDecoder
	byName map[string]*fieldDecoder // lower-cased field name
}

type fieldDecoder struct {
	i    int
	utyp unmarshalerType
	typ  reflect.Type
}

type unmarshalerType int

const (
	notUnmarshaler unmarshalerType = iota
	unmarshalerVal
	unmarshalerPtr
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func newDecoder(rt reflect.Type) (*decoder, error) {
	d := &decoder{
		byTag:  make(map[string]*fieldDecoder),
		byName: make(map[string]*fieldDecoder),
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			// Field isn't exported.
			continue
		}
		fd := &fieldDecoder{i: i, typ: field.Type}
		if tag, ok := field.Tag.Lookup("unformat"); ok {
			if tag == "-" {
				continue
			}
			d.byTag[tag] = fd
		}
		d.byName[strings.ToLower(field.Name)] = fd
		if field.Type.Implements(textUnmarshalerType) {
			fd.utyp = unmarshalerVal
		} else if reflect.PointerTo(field.Type).Implements(textUnmarshalerType) {
			fd.utyp = unmarshalerPtr
		}
		switch field.Type.Kind() {
		case reflect.Chan, reflect.Func, reflect.UnsafePointer:
			if fd.utyp == notUnmarshaler {
				return nil, fmt.Errorf("unformat: unsupported type: %s", field.Type)
			}
		}
	}
	return d, nil
}

func (d *decoder) lookup(name string) (*fieldDecoder, bool) {
	if fd, ok := d.byTag[name]; ok {
		return fd, true
	}
	fd, ok := d.byName[strings.ToLower(name)]
	return fd, ok
}

func decodeStruct(named map[string]any, rv reflect.Value) error {
	d, err := loadDecoder(rv.Type())
	if err != nil {
		return err
	}
	for name, val := range named {
		fd, ok := d.lookup(name)
		if !ok {
			return fmt.Errorf("unformat: no target field for %q in %s", name, rv.Type())
		}
		if err := fd.set(rv.Field(fd.i), name, val); err != nil {
			return err
		}
	}
	return nil
}

func (fd *fieldDecoder) set(field reflect.Value, name string, val any) error {
	if val == nil {
		return nil
	}
	vv := reflect.ValueOf(val)
	if vv.Type().AssignableTo(fd.typ) {
		field.Set(vv)
		return nil
	}
	if nested, ok := val.(map[string]any); ok && fd.typ.Kind() == reflect.Struct {
		return decodeStruct(nested, field)
	}
	if s, ok := val.(string); ok && fd.utyp != notUnmarshaler {
		var tu encoding.TextUnmarshaler
		switch fd.utyp {
		case unmarshalerVal:
			if field.Kind() == reflect.Ptr && field.IsNil() {
				field.Set(reflect.New(fd.typ.Elem()))
			}
			tu = field.Interface().(encoding.TextUnmarshaler)
		case unmarshalerPtr:
			tu = field.Addr().Interface().(encoding.TextUnmarshaler)
		}
		if err := tu.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("unformat: %s.UnmarshalText returned error: %s", name, err)
		}
		return nil
	}

	switch fd.typ.Kind() {
	case reflect.Slice:
		s, ok := val.(string)
		if !ok || fd.typ.Elem().Kind() != reflect.Uint8 {
			break
		}
		field.SetBytes([]byte(s))
		return nil
	case reflect.String:
		s, ok := val.(string)
		if !ok {
			break
		}
		field.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt64(val)
		if !ok {
			break
		}
		minMax := minMaxIntVals[fd.typ.Bits()]
		if n < minMax[0] || n > minMax[1] {
			return fmt.Errorf("unformat: cannot represent %d as %s", n, fd.typ)
		}
		field.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asInt64(val)
		if !ok {
			break
		}
		if n < 0 || uint64(n) > maxUintVals[fd.typ.Bits()] {
			return fmt.Errorf("unformat: cannot represent %d as %s", n, fd.typ)
		}
		field.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		var f float64
		switch x := val.(type) {
		case float64:
			f = x
		case int64:
			f = float64(x)
		default:
			return fmt.Errorf("unformat: cannot store %T in %s field %s", val, fd.typ, name)
		}
		field.SetFloat(f)
		return nil
	}
	return fmt.Errorf("unformat: cannot store %T in %s field %s", val, fd.typ, name)
}

func asInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int64:
		return x, true
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), true
		}
	}
	return 0, false
}

var minMaxIntVals = map[int][2]int64{
	8:  {math.MinInt8, math.MaxInt8},
	16: {math.MinInt16, math.MaxInt16},
	32: {math.MinInt32, math.MaxInt32},
	64: {math.MinInt64, math.MaxInt64},
}

var maxUintVals = map[int]uint64{
	8:  math.MaxUint8,
	16: math.MaxUint16,
	32: math.MaxUint32,
	64: math.MaxUint64,
}
