package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a tagged variant holding one logical telemetry value.
// The zero Value has KindInvalid and matches nothing.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
	list []Value
	m    map[string]Value
}

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps a signed integer.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a floating-point number.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a text value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bytes wraps an opaque byte string. The slice is not copied.
func Bytes(v []byte) Value { return Value{kind: KindBytes, raw: v} }

// List wraps an ordered sequence of values.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map wraps a keyed map of values. The map is not copied.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload, or 0 for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the numeric payload as a float64. Integer values are
// widened; non-numeric kinds yield 0.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Str returns the text payload, or "" for other kinds.
func (v Value) Str() string { return v.s }

// Bytes returns the byte payload, or nil for other kinds.
func (v Value) Bytes() []byte { return v.raw }

// List returns the sequence payload, or nil for other kinds.
func (v Value) List() []Value { return v.list }

// Map returns the keyed payload, or nil for other kinds.
func (v Value) Map() map[string]Value { return v.m }

// Equal reports whether two values hold the same kind and payload.
// Lists compare element-wise in order; maps compare key sets and values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, vv := range v.m {
			ov, ok := o.m[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Native converts the value to plain Go types for JSON marshaling and
// interop with loosely typed consumers.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.raw
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Native()
		}
		return out
	default:
		return nil
	}
}

// String implements fmt.Stringer for debug output.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindMap:
		// Deterministic order for logs.
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%s:%s", k, v.m[k])
		}
		buf.WriteByte('}')
		return buf.String()
	default:
		return fmt.Sprint(v.Native())
	}
}

// FromNative converts a plain Go value (as produced by encoding/json or a
// similar document decoder) into a tagged Value. Numbers decoded as
// json.Number are split into integer or float variants; float64 values
// with no fractional part stay floats, preserving the document's type.
func FromNative(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return String(""), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("integer %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []byte:
		return Bytes(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			iv, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return List(items...), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			iv, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = iv
		}
		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}
