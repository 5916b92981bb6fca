package codec

import (
	"math"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// minimize applies the lossy compaction transform to one logical value:
// booleans become 0/1, numbers become round(value*scale) integers, text
// and bytes pass through, sequences transform element-wise with the same
// scale, and nested maps translate each inner key independently and use
// that key's own scale.
func (c *Codec) minimize(v telemetry.Value, scale float64) CompactValue {
	switch v.Kind() {
	case telemetry.KindBool:
		if v.Bool() {
			return CompactInt(1)
		}
		return CompactInt(0)
	case telemetry.KindInt:
		if scale == 1 {
			return CompactInt(v.Int())
		}
		return CompactInt(int64(math.Round(float64(v.Int()) * scale)))
	case telemetry.KindFloat:
		return CompactInt(int64(math.Round(v.Float() * scale)))
	case telemetry.KindString:
		return CompactString(v.Str())
	case telemetry.KindBytes:
		return CompactBytes(v.Bytes())
	case telemetry.KindList:
		items := make([]CompactValue, len(v.List()))
		for i, item := range v.List() {
			items[i] = c.minimize(item, scale)
		}
		return CompactList(items...)
	case telemetry.KindMap:
		m := make(map[Key]CompactValue, len(v.Map()))
		for name, item := range v.Map() {
			m[c.keyFor(name)] = c.minimize(item, c.reg.ScaleFor(name))
		}
		return CompactMap(m)
	default:
		return CompactValue{}
	}
}

// restore is the inverse transform up to the scale's representable
// precision. Integers divide out a non-unit scale into floats and stay
// integers otherwise. A restored zero is indistinguishable from an
// originally-false boolean; restore always yields a number and never
// guesses a boolean back.
func (c *Codec) restore(v CompactValue, scale float64) telemetry.Value {
	switch v.Kind() {
	case telemetry.KindInt:
		if scale != 1 {
			return telemetry.Float(float64(v.Int()) / scale)
		}
		return telemetry.Int(v.Int())
	case telemetry.KindFloat:
		return telemetry.Float(v.Float())
	case telemetry.KindBool:
		return telemetry.Bool(v.Bool())
	case telemetry.KindString:
		return telemetry.String(v.Str())
	case telemetry.KindBytes:
		return telemetry.Bytes(v.Bytes())
	case telemetry.KindList:
		items := make([]telemetry.Value, len(v.List()))
		for i, item := range v.List() {
			items[i] = c.restore(item, scale)
		}
		return telemetry.List(items...)
	case telemetry.KindMap:
		m := make(map[string]telemetry.Value, len(v.Map()))
		for key, item := range v.Map() {
			name, keyScale := c.resolveKey(key)
			m[name] = c.restore(item, keyScale)
		}
		return telemetry.Map(m)
	default:
		return telemetry.Value{}
	}
}

// keyFor translates a field name to its compact key; unregistered names
// stay string keys.
func (c *Codec) keyFor(name string) Key {
	if key, ok := c.reg.KeyFor(name); ok {
		return NumKey(key)
	}
	return StrKey(name)
}

// resolveKey maps a compact key back to a field name and that field's
// scale. Unknown numeric keys keep their decimal rendering as the name so
// a receiver with an older registry does not silently lose data.
func (c *Codec) resolveKey(key Key) (string, float64) {
	if key.Numeric() {
		if name, ok := c.reg.NameFor(key.Num()); ok {
			return name, c.reg.ScaleFor(name)
		}
		return key.String(), 1
	}
	return key.Name(), c.reg.ScaleFor(key.Name())
}
