package bridge

import (
	"context"

	"github.com/sonde-labs/sondebridge/internal/codec"
	"github.com/sonde-labs/sondebridge/internal/ports"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// Receiver is the decode side of the link: it turns hex frame payloads
// from the radio back into named-field records and republishes them to
// the optional uplink.
type Receiver struct {
	codec  *codec.Codec
	uplink ports.UplinkPublisher
	logger ports.Logger
}

// ReceiverOption configures optional receiver behavior.
type ReceiverOption func(*Receiver)

// WithUplink attaches the aggregation service publisher.
func WithUplink(u ports.UplinkPublisher) ReceiverOption {
	return func(r *Receiver) { r.uplink = u }
}

// WithReceiverLogger sets the structured logger.
func WithReceiverLogger(logger ports.Logger) ReceiverOption {
	return func(r *Receiver) { r.logger = logger }
}

// NewReceiver creates a receiver bound to the given codec.
func NewReceiver(c *codec.Codec, opts ...ReceiverOption) *Receiver {
	r := &Receiver{codec: c, logger: noopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleMessage decodes one radio payload. Malformed payloads are
// reported to the caller; uplink failures are logged but do not fail the
// decode (the record was already recovered).
func (r *Receiver) HandleMessage(ctx context.Context, payload string) (telemetry.Record, error) {
	rec, err := r.codec.DecodeFrameHex(payload)
	if err != nil {
		r.logger.Warn("undecodable payload",
			ports.Int("payload_len", len(payload)),
			ports.Err(err),
		)
		return nil, err
	}

	r.logger.Info("telemetry received",
		ports.String("callsign", rec.Str("callsign")),
		ports.Int("fields", len(rec)),
		ports.String("frame_hex", payload),
	)

	if r.uplink != nil {
		if err := r.uplink.Publish(ctx, rec); err != nil {
			r.logger.Warn("uplink publish failed", ports.Err(err))
		}
	}
	return rec, nil
}
