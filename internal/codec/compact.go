package codec

import (
	"bytes"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// CompactValue is the encoded form of a logical value. Encoding never
// produces the bool variant (booleans become 0/1 integers), but a frame
// from a foreign sender may carry one, so decode keeps it representable.
type CompactValue struct {
	kind telemetry.Kind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
	list []CompactValue
	m    map[Key]CompactValue
}

// CompactRecord is a telemetry record after field-key mapping and value
// minimization, ready for binary serialization.
type CompactRecord map[Key]CompactValue

// CompactInt wraps a scaled integer.
func CompactInt(v int64) CompactValue { return CompactValue{kind: telemetry.KindInt, i: v} }

// CompactFloat wraps a float. Floats never come out of minimization; they
// appear only in frames produced by senders that skip scaling.
func CompactFloat(v float64) CompactValue { return CompactValue{kind: telemetry.KindFloat, f: v} }

// CompactString wraps a text value.
func CompactString(v string) CompactValue { return CompactValue{kind: telemetry.KindString, s: v} }

// CompactBool wraps a boolean from a foreign frame.
func CompactBool(v bool) CompactValue { return CompactValue{kind: telemetry.KindBool, b: v} }

// CompactBytes wraps an opaque byte string.
func CompactBytes(v []byte) CompactValue { return CompactValue{kind: telemetry.KindBytes, raw: v} }

// CompactList wraps an ordered sequence.
func CompactList(items ...CompactValue) CompactValue {
	return CompactValue{kind: telemetry.KindList, list: items}
}

// CompactMap wraps a nested compact map.
func CompactMap(m map[Key]CompactValue) CompactValue {
	return CompactValue{kind: telemetry.KindMap, m: m}
}

// Kind returns the variant tag.
func (v CompactValue) Kind() telemetry.Kind { return v.kind }

// Int returns the integer payload, or 0 for other kinds.
func (v CompactValue) Int() int64 { return v.i }

// Float returns the float payload, or 0 for other kinds.
func (v CompactValue) Float() float64 { return v.f }

// Str returns the text payload, or "" for other kinds.
func (v CompactValue) Str() string { return v.s }

// Bool returns the boolean payload, or false for other kinds.
func (v CompactValue) Bool() bool { return v.b }

// Bytes returns the byte payload, or nil for other kinds.
func (v CompactValue) Bytes() []byte { return v.raw }

// List returns the sequence payload, or nil for other kinds.
func (v CompactValue) List() []CompactValue { return v.list }

// Map returns the nested map payload, or nil for other kinds.
func (v CompactValue) Map() map[Key]CompactValue { return v.m }

// Equal reports whether two compact values hold the same kind and payload.
func (v CompactValue) Equal(o CompactValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case telemetry.KindBool:
		return v.b == o.b
	case telemetry.KindInt:
		return v.i == o.i
	case telemetry.KindFloat:
		return v.f == o.f
	case telemetry.KindString:
		return v.s == o.s
	case telemetry.KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case telemetry.KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case telemetry.KindMap:
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
