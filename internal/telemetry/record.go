package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a named-field telemetry record as produced by the upstream
// radiosonde decoder. The codec never mutates a record; encode and decode
// are pure transforms producing new maps.
type Record map[string]Value

// ParseRecord parses a JSON document into a Record. Numbers are decoded
// through json.Number so integer-valued fields keep their integer type
// instead of collapsing to float64.
func ParseRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}

	rec := make(Record, len(doc))
	for name, raw := range doc {
		v, err := FromNative(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rec[name] = v
	}
	return rec, nil
}

// Native converts the record to plain Go types.
func (r Record) Native() map[string]any {
	out := make(map[string]any, len(r))
	for name, v := range r {
		out[name] = v.Native()
	}
	return out
}

// MarshalJSON renders the record as a JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Native())
}

// Field returns the named value, reporting whether it is present.
func (r Record) Field(name string) (Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Str returns the named field as text, or "" when absent or non-text.
func (r Record) Str(name string) string {
	return r[name].Str()
}
