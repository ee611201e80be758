package export

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Object is a JSON object that keeps keys in insertion order. Exporters
// build documents from Objects so that output is byte-for-byte stable.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// Set stores v under key. Setting an existing key keeps its position.
func (o *Object) Set(key string, v any) *Object {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// SetString stores s unless it is empty.
func (o *Object) SetString(key, s string) *Object {
	if s == "" {
		return o
	}
	return o.Set(key, s)
}

// SetStrings stores ss unless it is empty.
func (o *Object) SetStrings(key string, ss []string) *Object {
	if len(ss) == 0 {
		return o
	}
	return o.Set(key, append([]string(nil), ss...))
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object compactly in key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if err := encodeValue(buf, o.vals[k]); err != nil {
			return fmt.Errorf("encode %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			buf.WriteString("null")
			return nil
		}
		return t.encode(buf)
	case []*Object:
		return encodeList(buf, len(t), func(i int) any { return t[i] })
	case []any:
		return encodeList(buf, len(t), func(i int) any { return t[i] })
	case []string:
		return encodeList(buf, len(t), func(i int) any { return t[i] })
	case []float64:
		return encodeList(buf, len(t), func(i int) any { return t[i] })
	}
	b, err := marshalNoEscape(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// marshalNoEscape encodes v without HTML escaping so hrefs keep their
// query strings readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeList(buf *bytes.Buffer, n int, at func(int) any) error {
	buf.WriteByte('[')
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, at(i)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// MarshalIndent renders v with two-space indentation and a trailing
// newline.
func MarshalIndent(v any) ([]byte, error) {
	var compact bytes.Buffer
	if err := encodeValue(&compact, v); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
