package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sonde-labs/sondebridge/internal/codec"
	"github.com/sonde-labs/sondebridge/internal/registry"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// fakeUplink records published telemetry.
type fakeUplink struct {
	mu      sync.Mutex
	records []telemetry.Record
	err     error
}

func (f *fakeUplink) Publish(ctx context.Context, rec telemetry.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeUplink) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func encodePayload(t *testing.T, rec telemetry.Record) string {
	t.Helper()
	payload, err := codec.New(registry.Default()).EncodeFrameHex(rec)
	if err != nil {
		t.Fatalf("EncodeFrameHex() error = %v", err)
	}
	return payload
}

func TestReceiver_HandleMessage(t *testing.T) {
	uplink := &fakeUplink{}
	r := NewReceiver(codec.New(registry.Default()), WithUplink(uplink))

	payload := encodePayload(t, telemetry.Record{
		"callsign": telemetry.String("IMET-8120B666"),
		"latitude": telemetry.Float(31.87804),
		"altitude": telemetry.Int(4523),
	})

	rec, err := r.HandleMessage(context.Background(), payload)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if got := rec.Str("callsign"); got != "IMET-8120B666" {
		t.Errorf("callsign = %q", got)
	}
	if got := rec["altitude"]; !got.Equal(telemetry.Int(4523)) {
		t.Errorf("altitude = %v, want 4523", got)
	}
	if uplink.published() != 1 {
		t.Errorf("uplink received %d records, want 1", uplink.published())
	}
}

func TestReceiver_MalformedPayload(t *testing.T) {
	uplink := &fakeUplink{}
	r := NewReceiver(codec.New(registry.Default()), WithUplink(uplink))

	tests := []struct {
		name    string
		payload string
	}{
		{"not hex", "zz"},
		{"hex but not cbor", "fffefd"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.HandleMessage(context.Background(), tt.payload)
			if !errors.Is(err, telemetry.ErrMalformedFrame) {
				t.Errorf("HandleMessage(%q) error = %v, want ErrMalformedFrame", tt.payload, err)
			}
		})
	}

	if uplink.published() != 0 {
		t.Errorf("uplink received %d records from malformed payloads", uplink.published())
	}
}

func TestReceiver_UplinkFailureDoesNotFailDecode(t *testing.T) {
	uplink := &fakeUplink{err: errors.New("sondehub unreachable")}
	r := NewReceiver(codec.New(registry.Default()), WithUplink(uplink))

	payload := encodePayload(t, telemetry.Record{
		"callsign": telemetry.String("IMET-8120B666"),
	})

	rec, err := r.HandleMessage(context.Background(), payload)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v, decode must survive an uplink failure", err)
	}
	if got := rec.Str("callsign"); got != "IMET-8120B666" {
		t.Errorf("callsign = %q", got)
	}
}

func TestReceiver_NoUplinkConfigured(t *testing.T) {
	r := NewReceiver(codec.New(registry.Default()))

	payload := encodePayload(t, telemetry.Record{
		"callsign": telemetry.String("IMET-8120B666"),
	})

	if _, err := r.HandleMessage(context.Background(), payload); err != nil {
		t.Errorf("HandleMessage() error = %v", err)
	}
}
