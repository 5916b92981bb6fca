package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sonde-labs/sondebridge/internal/codec"
	"github.com/sonde-labs/sondebridge/internal/registry"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// fakeSource replays canned records and then either blocks until the
// context is canceled or returns, closing the source.
type fakeSource struct {
	records [][]byte
	block   bool
}

func (f *fakeSource) Listen(ctx context.Context, handle func([]byte)) error {
	for _, r := range f.records {
		handle(r)
	}
	if f.block {
		<-ctx.Done()
	}
	return nil
}

// fakeRadio records transmitted payloads.
type fakeRadio struct {
	mu       sync.Mutex
	payloads []string
}

func (f *fakeRadio) Transmit(ctx context.Context, payload string) error {
	// Refuse canceled contexts like a real transport would.
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeRadio) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func summaryJSON(callsign string, frame int) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"PAYLOAD_SUMMARY","callsign":%q,"latitude":31.87804,"longitude":34.74142,"altitude":4523,"frame":%d,"temp":-5.1,"model":"iMet-4"}`,
		callsign, frame))
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func newTestBridge(t *testing.T, cfg Config, source *fakeSource, radio *fakeRadio) *Bridge {
	t.Helper()
	b, err := New(cfg, codec.New(registry.Default()), source, radio)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestNew_RequiresCollaborators(t *testing.T) {
	cfg := Config{CountThreshold: 1, TimeThreshold: time.Second}

	_, err := New(cfg, nil, &fakeSource{}, &fakeRadio{})
	if !errors.Is(err, telemetry.ErrInvalidConfig) {
		t.Errorf("New(nil codec) error = %v, want ErrInvalidConfig", err)
	}
	_, err = New(cfg, codec.New(registry.Default()), nil, &fakeRadio{})
	if !errors.Is(err, telemetry.ErrInvalidConfig) {
		t.Errorf("New(nil source) error = %v, want ErrInvalidConfig", err)
	}
	_, err = New(Config{CountThreshold: 0, TimeThreshold: time.Second},
		codec.New(registry.Default()), &fakeSource{}, &fakeRadio{})
	if !errors.Is(err, telemetry.ErrInvalidConfig) {
		t.Errorf("New(zero count) error = %v, want ErrInvalidConfig", err)
	}
}

func TestBridge_CountThresholdTransmitsLatest(t *testing.T) {
	source := &fakeSource{
		records: [][]byte{
			summaryJSON("IMET-OLD", 1714),
			summaryJSON("IMET-NEW", 1715),
		},
		block: true,
	}
	radio := &fakeRadio{}
	b := newTestBridge(t, Config{CountThreshold: 2, TimeThreshold: time.Hour}, source, radio)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	waitFor(t, func() bool { return len(radio.sent()) == 1 }, "frame never transmitted")

	rec, err := codec.New(registry.Default()).DecodeFrameHex(radio.sent()[0])
	if err != nil {
		t.Fatalf("transmitted payload undecodable: %v", err)
	}

	// Only the latest record of the window goes out.
	if got := rec.Str("callsign"); got != "IMET-NEW" {
		t.Errorf("callsign = %q, want IMET-NEW", got)
	}
	if got := rec["frame"]; !got.Equal(telemetry.Int(1715)) {
		t.Errorf("frame = %v, want 1715", got)
	}
	// Ground-station fields are stripped before encoding.
	if _, ok := rec.Field("temp"); ok {
		t.Error("temp survived the airborne field reduction")
	}
}

func TestBridge_IgnoresNonSummaryRecords(t *testing.T) {
	source := &fakeSource{
		records: [][]byte{
			[]byte(`{"type":"MODEM_STATS","snr":12.4}`),
			summaryJSON("IMET-8120B666", 1715),
		},
		block: true,
	}
	radio := &fakeRadio{}
	b := newTestBridge(t, Config{CountThreshold: 1, TimeThreshold: time.Hour}, source, radio)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	waitFor(t, func() bool { return len(radio.sent()) == 1 }, "summary frame never transmitted")

	// The stats record fired its own window but produced no transmission.
	rec, err := codec.New(registry.Default()).DecodeFrameHex(radio.sent()[0])
	if err != nil {
		t.Fatalf("transmitted payload undecodable: %v", err)
	}
	if got := rec.Str("callsign"); got != "IMET-8120B666" {
		t.Errorf("callsign = %q", got)
	}
}

func TestBridge_StopFlushesOpenWindow(t *testing.T) {
	source := &fakeSource{
		records: [][]byte{summaryJSON("IMET-8120B666", 1715)},
		block:   true,
	}
	radio := &fakeRadio{}
	b := newTestBridge(t, Config{CountThreshold: 100, TimeThreshold: time.Hour}, source, radio)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Give the source loop time to buffer the record below the threshold.
	time.Sleep(50 * time.Millisecond)
	if got := radio.sent(); len(got) != 0 {
		t.Fatalf("transmitted before threshold: %v", got)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := len(radio.sent()); got != 1 {
		t.Errorf("transmitted %d frames after Stop, want the flushed window", got)
	}
	if got := b.Status(); got != StateStopped {
		t.Errorf("Status() = %v, want Stopped", got)
	}

	// The flushed frame must be intact, not a canceled-transmit leftover.
	rec, err := codec.New(registry.Default()).DecodeFrameHex(radio.sent()[0])
	if err != nil {
		t.Fatalf("flushed payload undecodable: %v", err)
	}
	if got := rec.Str("callsign"); got != "IMET-8120B666" {
		t.Errorf("callsign = %q", got)
	}
}

func TestBridge_DoneBeforeStart(t *testing.T) {
	source := &fakeSource{
		records: [][]byte{summaryJSON("IMET-8120B666", 1715)},
	}
	b := newTestBridge(t, Config{CountThreshold: 100, TimeThreshold: time.Hour}, source, &fakeRadio{})

	// Done must hand out a usable channel before the bridge runs.
	done := b.Done()
	if done == nil {
		t.Fatal("Done() = nil before Start")
	}

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pre-Start Done channel never closed")
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestBridge_DoneAfterSourceExhausted(t *testing.T) {
	source := &fakeSource{
		records: [][]byte{summaryJSON("IMET-8120B666", 1715)},
	}
	radio := &fakeRadio{}
	b := newTestBridge(t, Config{CountThreshold: 100, TimeThreshold: time.Hour}, source, radio)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() never closed after the source ended")
	}

	// The final window was flushed before Done closed.
	if got := len(radio.sent()); got != 1 {
		t.Errorf("transmitted %d frames, want 1", got)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestBridge_StartStopGuards(t *testing.T) {
	source := &fakeSource{block: true}
	b := newTestBridge(t, Config{CountThreshold: 1, TimeThreshold: time.Second}, source, &fakeRadio{})

	if err := b.Stop(); !errors.Is(err, telemetry.ErrNotRunning) {
		t.Errorf("Stop() before Start error = %v, want ErrNotRunning", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := b.Start(context.Background()); !errors.Is(err, telemetry.ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	if got := b.Status(); got != StateRunning {
		t.Errorf("Status() = %v, want Running", got)
	}
	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestBridge_SetThresholds(t *testing.T) {
	source := &fakeSource{block: true}
	b := newTestBridge(t, Config{CountThreshold: 10, TimeThreshold: time.Hour}, source, &fakeRadio{})

	if err := b.SetThresholds(5, 30*time.Second); err != nil {
		t.Errorf("SetThresholds() error = %v", err)
	}
	if err := b.SetThresholds(0, 30*time.Second); !errors.Is(err, telemetry.ErrInvalidConfig) {
		t.Errorf("SetThresholds(0, ...) error = %v, want ErrInvalidConfig", err)
	}
}
