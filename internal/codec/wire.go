package codec

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// MarshalBinary serializes a compact record as a self-describing CBOR
// map. Integer keys carry registered fields; string keys carry
// unregistered ones. No schema or version byte is written.
func (c *Codec) MarshalBinary(cr CompactRecord) ([]byte, error) {
	data, err := cbor.Marshal(compactMapToWire(cr))
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	return data, nil
}

// UnmarshalBinary parses a CBOR frame back into a compact record. Input
// that does not parse as a map fails with ErrMalformedFrame; an empty map
// is a valid, empty record, not an error.
func (c *Codec) UnmarshalBinary(data []byte) (CompactRecord, error) {
	var raw map[any]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", telemetry.ErrMalformedFrame, err)
	}
	cr := make(CompactRecord, len(raw))
	for rk, rv := range raw {
		key, err := wireToKey(rk)
		if err != nil {
			return nil, err
		}
		v, err := wireToCompact(rv)
		if err != nil {
			return nil, err
		}
		cr[key] = v
	}
	return cr, nil
}

func compactMapToWire(m map[Key]CompactValue) map[any]any {
	out := make(map[any]any, len(m))
	for k, v := range m {
		out[keyToWire(k)] = compactToWire(v)
	}
	return out
}

func keyToWire(k Key) any {
	if k.Numeric() {
		return k.Num()
	}
	return k.Name()
}

func compactToWire(v CompactValue) any {
	switch v.Kind() {
	case telemetry.KindBool:
		return v.Bool()
	case telemetry.KindInt:
		return v.Int()
	case telemetry.KindFloat:
		return v.Float()
	case telemetry.KindString:
		return v.Str()
	case telemetry.KindBytes:
		return v.Bytes()
	case telemetry.KindList:
		out := make([]any, len(v.List()))
		for i, item := range v.List() {
			out[i] = compactToWire(item)
		}
		return out
	case telemetry.KindMap:
		return compactMapToWire(v.Map())
	default:
		return nil
	}
}

func wireToKey(k any) (Key, error) {
	switch t := k.(type) {
	case int64:
		return NumKey(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Key{}, fmt.Errorf("%w: key %d out of range", telemetry.ErrMalformedFrame, t)
		}
		return NumKey(int64(t)), nil
	case string:
		return StrKey(t), nil
	default:
		return Key{}, fmt.Errorf("%w: unsupported key type %T", telemetry.ErrMalformedFrame, k)
	}
}

func wireToCompact(v any) (CompactValue, error) {
	switch t := v.(type) {
	case bool:
		return CompactBool(t), nil
	case int64:
		return CompactInt(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return CompactValue{}, fmt.Errorf("%w: integer %d out of range", telemetry.ErrMalformedFrame, t)
		}
		return CompactInt(int64(t)), nil
	case float64:
		return CompactFloat(t), nil
	case string:
		return CompactString(t), nil
	case []byte:
		return CompactBytes(t), nil
	case []any:
		items := make([]CompactValue, len(t))
		for i, item := range t {
			cv, err := wireToCompact(item)
			if err != nil {
				return CompactValue{}, err
			}
			items[i] = cv
		}
		return CompactList(items...), nil
	case map[any]any:
		m := make(map[Key]CompactValue, len(t))
		for rk, rv := range t {
			key, err := wireToKey(rk)
			if err != nil {
				return CompactValue{}, err
			}
			cv, err := wireToCompact(rv)
			if err != nil {
				return CompactValue{}, err
			}
			m[key] = cv
		}
		return CompactMap(m), nil
	default:
		return CompactValue{}, fmt.Errorf("%w: unsupported value type %T", telemetry.ErrMalformedFrame, v)
	}
}
