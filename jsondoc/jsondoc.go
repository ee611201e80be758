// Package jsondoc gives adapters presence-aware access to partially known
// JSON documents. Objects keep their member order, so the order a source
// lists assets or bands in survives decoding.
package jsondoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/c360studio/geocrosswalk/record"
)

// Kind is the JSON type of a value.
type Kind int

const (
	Missing Kind = iota
	Null
	Object
	Array
	String
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "missing"
	}
}

type object struct {
	keys []string
	vals map[string]any
}

// Value is a node in a decoded document together with its path from the
// root. The zero Value is missing.
type Value struct {
	v       any
	path    string
	present bool
}

// Parse decodes a single JSON document.
func Parse(raw []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, fmt.Errorf("decode json: empty document")
		}
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	v, err := decode(dec, tok)
	if err != nil {
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("decode json: trailing data after document")
	}
	return Value{v: v, present: true}, nil
}

func decode(dec *json.Decoder, tok any) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &object{vals: make(map[string]any)}
			for {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := kt.(json.Delim); ok && d == '}' {
					return obj, nil
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decode(dec, vt)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.vals[key]; !dup {
					obj.keys = append(obj.keys, key)
				}
				obj.vals[key] = val
			}
		case '[':
			arr := []any{}
			for {
				et, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := et.(json.Delim); ok && d == ']' {
					return arr, nil
				}
				val, err := decode(dec, et)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case string, json.Number, bool, nil:
		return t, nil
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	}
	return nil, fmt.Errorf("unexpected token %T", tok)
}

// Path returns the location of the value, for example "assets.B04.href".
func (v Value) Path() string {
	return v.path
}

// Kind returns the JSON type of the value.
func (v Value) Kind() Kind {
	if !v.present {
		return Missing
	}
	switch v.v.(type) {
	case nil:
		return Null
	case *object:
		return Object
	case []any:
		return Array
	case string:
		return String
	case json.Number:
		return Number
	case bool:
		return Bool
	}
	return Missing
}

// Exists reports whether the value is present and not null.
func (v Value) Exists() bool {
	k := v.Kind()
	return k != Missing && k != Null
}

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.Kind() == Object }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.Kind() == Array }

// Get returns an object member. A missing key or a non-object yields a
// missing value that still carries the path.
func (v Value) Get(key string) Value {
	out := Value{path: join(v.path, key)}
	if obj, ok := v.v.(*object); ok && v.present {
		if val, found := obj.vals[key]; found {
			out.v, out.present = val, true
		}
	}
	return out
}

// At follows a chain of object keys.
func (v Value) At(keys ...string) Value {
	for _, k := range keys {
		v = v.Get(k)
	}
	return v
}

// First returns the first of keys that exists, or the missing value of the
// first key.
func (v Value) First(keys ...string) Value {
	for _, k := range keys {
		if got := v.Get(k); got.Exists() {
			return got
		}
	}
	if len(keys) == 0 {
		return Value{path: v.path}
	}
	return v.Get(keys[0])
}

// Has reports whether key exists and is not null.
func (v Value) Has(key string) bool {
	return v.Get(key).Exists()
}

// Index returns an array element.
func (v Value) Index(i int) Value {
	out := Value{path: fmt.Sprintf("%s[%d]", v.path, i)}
	if arr, ok := v.v.([]any); ok && v.present && i >= 0 && i < len(arr) {
		out.v, out.present = arr[i], true
	}
	return out
}

// Len returns the length of an array or the member count of an object.
func (v Value) Len() int {
	switch t := v.v.(type) {
	case []any:
		return len(t)
	case *object:
		return len(t.keys)
	}
	return 0
}

// Items returns the elements of an array.
func (v Value) Items() []Value {
	arr, ok := v.v.([]any)
	if !ok || !v.present {
		return nil
	}
	out := make([]Value, len(arr))
	for i := range arr {
		out[i] = v.Index(i)
	}
	return out
}

// List returns the elements of an array, or the value itself as a one
// element list when it is a single non-null value. Many catalogs allow
// either form.
func (v Value) List() []Value {
	switch v.Kind() {
	case Array:
		return v.Items()
	case Missing, Null:
		return nil
	}
	return []Value{v}
}

// Keys returns object keys in document order.
func (v Value) Keys() []string {
	obj, ok := v.v.(*object)
	if !ok || !v.present {
		return nil
	}
	return append([]string(nil), obj.keys...)
}

// Member is one object member.
type Member struct {
	Key   string
	Value Value
}

// Members returns object members in document order.
func (v Value) Members() []Member {
	keys := v.Keys()
	out := make([]Member, len(keys))
	for i, k := range keys {
		out[i] = Member{Key: k, Value: v.Get(k)}
	}
	return out
}

// Str returns the trimmed string value or "".
func (v Value) Str() string {
	return strings.TrimSpace(v.Text().OrElse(""))
}

// Text returns strings as is and renders numbers and booleans.
func (v Value) Text() record.Optional[string] {
	if !v.present {
		return record.None[string]()
	}
	switch t := v.v.(type) {
	case string:
		return record.Some(t)
	case json.Number:
		return record.Some(string(t))
	case bool:
		return record.Some(strconv.FormatBool(t))
	}
	return record.None[string]()
}

// Float returns a number, or a string holding one.
func (v Value) Float() record.Optional[float64] {
	if !v.present {
		return record.None[float64]()
	}
	var s string
	switch t := v.v.(type) {
	case json.Number:
		s = string(t)
	case string:
		s = strings.TrimSpace(t)
	default:
		return record.None[float64]()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return record.None[float64]()
	}
	return record.Some(f)
}

// Int returns an integral number, or a string holding one.
func (v Value) Int() record.Optional[int64] {
	f, ok := v.Float().Get()
	if !ok || f != float64(int64(f)) {
		return record.None[int64]()
	}
	return record.Some(int64(f))
}

// Bool returns a boolean, or a string spelling one.
func (v Value) Bool() record.Optional[bool] {
	if !v.present {
		return record.None[bool]()
	}
	switch t := v.v.(type) {
	case bool:
		return record.Some(t)
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return record.Some(b)
		}
	}
	return record.None[bool]()
}

// Floats returns an array of numbers. It returns nil if any element is
// not numeric.
func (v Value) Floats() []float64 {
	items := v.Items()
	if items == nil {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := it.Float().Get()
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

// Ints returns an array of integers. It returns nil if any element is not
// integral.
func (v Value) Ints() []int {
	items := v.Items()
	if items == nil {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, it := range items {
		n, ok := it.Int().Get()
		if !ok {
			return nil
		}
		out = append(out, int(n))
	}
	return out
}

// Strings returns the textual elements of an array, or a single string as
// a one element list. Non-textual elements are skipped.
func (v Value) Strings() []string {
	var out []string
	for _, it := range v.List() {
		if s, ok := it.Text().Get(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Interface converts the value to plain Go values: map[string]any, []any,
// string, float64, bool or nil.
func (v Value) Interface() any {
	return plain(v.v)
}

func plain(x any) any {
	switch t := x.(type) {
	case *object:
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = plain(t.vals[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return string(t)
		}
		return f
	}
	return x
}

func join(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
