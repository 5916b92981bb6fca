// Package codec implements the bidirectional transform between a
// named-field telemetry record and the minimal binary frame carried over
// the radio link.
//
// Encoding maps every field name to its registry key (unregistered names
// stay strings), minimizes the value with that field's scale factor, and
// serializes the result as a self-describing CBOR map. Decoding is the
// exact inverse up to the fixed-point precision bound: a field encoded
// through scale s round-trips to within 0.5/s absolute error, and
// scale-1 integer fields round-trip exactly.
//
// Known lossy corners, by design:
//   - booleans are encoded as 0/1 and restored as numbers; a restored
//     zero cannot be told apart from an originally-false boolean
//   - there is no schema version byte; version skew across the link is
//     absorbed only by the unknown-key passthrough, so registry keys
//     must never be reassigned (migration hazard)
//
// A Codec holds only the immutable field registry and is safe for
// concurrent use.
package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/sonde-labs/sondebridge/internal/registry"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// Codec converts telemetry records to and from compact frames using an
// injected field registry.
type Codec struct {
	reg *registry.Registry
}

// New creates a codec bound to the given registry.
func New(reg *registry.Registry) *Codec {
	return &Codec{reg: reg}
}

// Encode maps every field of the record to its compact key and minimizes
// its value with that field's scale. The input record is not mutated.
func (c *Codec) Encode(rec telemetry.Record) CompactRecord {
	out := make(CompactRecord, len(rec))
	for name, v := range rec {
		out[c.keyFor(name)] = c.minimize(v, c.reg.ScaleFor(name))
	}
	return out
}

// Decode resolves every compact key back to its field name and restores
// its value. Unknown numeric keys are preserved verbatim (their decimal
// rendering becomes the field name) rather than dropped.
func (c *Codec) Decode(cr CompactRecord) telemetry.Record {
	out := make(telemetry.Record, len(cr))
	for key, v := range cr {
		name, scale := c.resolveKey(key)
		out[name] = c.restore(v, scale)
	}
	return out
}

// EncodeFrame encodes a record and serializes it to a binary frame.
func (c *Codec) EncodeFrame(rec telemetry.Record) ([]byte, error) {
	return c.MarshalBinary(c.Encode(rec))
}

// DecodeFrame deserializes a binary frame and decodes it to a record.
func (c *Codec) DecodeFrame(frame []byte) (telemetry.Record, error) {
	cr, err := c.UnmarshalBinary(frame)
	if err != nil {
		return nil, err
	}
	return c.Decode(cr), nil
}

// EncodeFrameHex encodes a record to the hex text form carried as a radio
// message payload.
func (c *Codec) EncodeFrameHex(rec telemetry.Record) (string, error) {
	frame, err := c.EncodeFrame(rec)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(frame), nil
}

// DecodeFrameHex decodes a hex radio payload back to a record. Payloads
// that are not valid hex are reported as malformed frames.
func (c *Codec) DecodeFrameHex(payload string) (telemetry.Record, error) {
	frame, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex payload: %v", telemetry.ErrMalformedFrame, err)
	}
	return c.DecodeFrame(frame)
}
