package codec

import (
	"encoding/json"
	"fmt"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// MarshalText renders a compact record as a minimal JSON object with no
// extraneous whitespace. Numeric keys are rendered as decimal strings
// since JSON object keys must be text. This form is for size comparison
// and debugging only; the wire carries the binary form.
func (c *Codec) MarshalText(cr CompactRecord) ([]byte, error) {
	data, err := json.Marshal(textMap(cr))
	if err != nil {
		return nil, fmt.Errorf("marshal text: %w", err)
	}
	return data, nil
}

func textMap(m map[Key]CompactValue) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k.String()] = textValue(v)
	}
	return out
}

func textValue(v CompactValue) any {
	switch v.Kind() {
	case telemetry.KindMap:
		return textMap(v.Map())
	case telemetry.KindList:
		out := make([]any, len(v.List()))
		for i, item := range v.List() {
			out[i] = textValue(item)
		}
		return out
	default:
		return compactToWire(v)
	}
}
