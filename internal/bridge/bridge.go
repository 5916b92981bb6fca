// Package bridge composes the telemetry pipeline: a record source feeds
// the threshold scheduler, and each fired window is compacted by the
// codec and handed to the radio transmitter.
//
// The scheduler and the codec have no dependency on each other; they meet
// only here. All blocking I/O (the radio, the uplink) stays behind ports
// and outside the scheduler's critical section.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sonde-labs/sondebridge/internal/batch"
	"github.com/sonde-labs/sondebridge/internal/codec"
	"github.com/sonde-labs/sondebridge/internal/ports"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// summaryRecordType is the only record type relayed over the link.
const summaryRecordType = "PAYLOAD_SUMMARY"

// shutdownTimeout bounds the wait for worker goroutines on Stop.
const shutdownTimeout = 10 * time.Second

// airborneFields is the subset of summary fields worth the airtime. The
// remaining fields (temp, humidity, pressure, ...) are ground-station
// detail and are dropped before encoding.
var airborneFields = []string{
	"callsign",
	"latitude",
	"longitude",
	"altitude",
	"time",
	"model",
	"freq",
	"frame",
	"bt",
	"snr",
	"subtype",
}

// Config holds the bridge composition parameters.
type Config struct {
	// CountThreshold fires the window after this many records.
	CountThreshold int

	// TimeThreshold fires the window this long after its first record.
	TimeThreshold time.Duration

	// PollInterval is the scheduler timer granularity.
	PollInterval time.Duration

	// RebootInterval enables periodic radio reboots when positive and a
	// Rebooter is attached.
	RebootInterval time.Duration
}

// Bridge wires a record source, the threshold scheduler, the compaction
// codec, and a frame transmitter into one running pipeline.
type Bridge struct {
	cfg    Config
	codec  *codec.Codec
	sched  *batch.Scheduler[[]byte]
	source ports.RecordSource
	radio  ports.FrameTransmitter
	reboot ports.Rebooter
	logger ports.Logger

	life   lifecycle
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	doneCh chan struct{}
}

// Option configures optional bridge behavior.
type Option func(*Bridge)

// WithLogger sets the structured logger.
func WithLogger(logger ports.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithRebooter attaches the periodic radio reboot hook.
func WithRebooter(r ports.Rebooter) Option {
	return func(b *Bridge) { b.reboot = r }
}

// New creates a bridge. The codec, source, and radio are required.
func New(cfg Config, c *codec.Codec, source ports.RecordSource, radio ports.FrameTransmitter, opts ...Option) (*Bridge, error) {
	if c == nil || source == nil || radio == nil {
		return nil, fmt.Errorf("%w: codec, source, and radio are required", telemetry.ErrInvalidConfig)
	}
	b := &Bridge{
		cfg:    cfg,
		codec:  c,
		source: source,
		radio:  radio,
		logger: noopLogger{},
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	schedOpts := []batch.Option[[]byte]{batch.WithLogger[[]byte](b.logger)}
	if cfg.PollInterval > 0 {
		schedOpts = append(schedOpts, batch.WithPollInterval[[]byte](cfg.PollInterval))
	}
	sched, err := batch.NewScheduler[[]byte](
		cfg.CountThreshold,
		cfg.TimeThreshold,
		batch.ConsumerFunc[[]byte](b.transmit),
		schedOpts...,
	)
	if err != nil {
		return nil, err
	}
	b.sched = sched
	return b, nil
}

// Start launches the scheduler, the record source loop, and the optional
// housekeeping task. It returns once everything is running.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.life.transition(StateRunning); err != nil {
		return err
	}

	b.runCtx, b.cancel = context.WithCancel(ctx)

	// A Done channel from before the first Start must still observe this
	// run; only replace it when a previous run already closed it.
	select {
	case <-b.doneCh:
		b.doneCh = make(chan struct{})
	default:
	}

	if err := b.sched.Start(); err != nil {
		b.cancel()
		_ = b.life.transition(StateCrashed)
		return err
	}

	if b.reboot != nil && b.cfg.RebootInterval > 0 {
		hk := NewHousekeeper(b.cfg.RebootInterval, b.reboot, b.logger)
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			hk.Run(b.runCtx)
		}()
	}

	b.wg.Add(1)
	go b.sourceLoop()

	b.logger.Info("bridge started",
		ports.Int("count_threshold", b.cfg.CountThreshold),
		ports.Duration("time_threshold", b.cfg.TimeThreshold),
	)
	return nil
}

// Stop flushes the open window, stops the scheduler, and waits for the
// worker goroutines with a bounded timeout.
func (b *Bridge) Stop() error {
	if err := b.life.transition(StateStopping); err != nil {
		return err
	}

	// Flush before canceling the run context: the flush path transmits
	// through runCtx, and a canceled context would make the radio refuse
	// the final frame.
	b.sched.Flush()
	b.cancel()
	if err := b.sched.Stop(); err != nil {
		b.logger.Warn("scheduler stop", ports.Err(err))
	}

	waited := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(shutdownTimeout):
		_ = b.life.transition(StateCrashed)
		return telemetry.ErrShutdownTimeout
	}

	if err := b.life.transition(StateStopped); err != nil {
		return err
	}
	b.logger.Info("bridge stopped")
	return nil
}

// Status returns the current lifecycle state.
func (b *Bridge) Status() State {
	return b.life.current()
}

// Done is closed when the record source is exhausted. The open window is
// flushed first, so a caller waiting on Done sees the final frame. The
// channel is valid before Start and refers to the next (or current) run.
func (b *Bridge) Done() <-chan struct{} {
	return b.doneCh
}

// SetThresholds pushes new scheduler thresholds into the running bridge.
func (b *Bridge) SetThresholds(countThreshold int, timeThreshold time.Duration) error {
	return b.sched.SetThresholds(countThreshold, timeThreshold)
}

// sourceLoop feeds raw records into the scheduler until the source is
// exhausted or the run context is canceled.
func (b *Bridge) sourceLoop() {
	defer b.wg.Done()
	defer close(b.doneCh)

	err := b.source.Listen(b.runCtx, func(data []byte) {
		// The source owns the slice only for the duration of the callback;
		// the scheduler buffers past it.
		cp := make([]byte, len(data))
		copy(cp, data)
		b.sched.Receive(cp)
	})
	if err != nil && b.runCtx.Err() == nil {
		b.logger.Error("record source failed", ports.Err(err))
		return
	}
	b.logger.Info("record source closed")
	b.sched.Flush()
}

// transmit is the scheduler consumer: parse, filter, reduce, compact,
// and hand the frame to the radio.
func (b *Bridge) transmit(raw []byte) error {
	rec, err := telemetry.ParseRecord(raw)
	if err != nil {
		return err
	}
	if typ := rec.Str("type"); typ != summaryRecordType {
		b.logger.Debug("unsupported record type", ports.String("type", typ))
		return nil
	}

	payload, err := b.codec.EncodeFrameHex(reduceRecord(rec))
	if err != nil {
		return err
	}
	b.logger.Info("frame encoded",
		ports.Int("frame_bytes", len(payload)/2),
		ports.String("frame_hex", payload),
	)
	return b.radio.Transmit(b.runCtx, payload)
}

// reduceRecord keeps only the airborne field subset. Absent fields are
// omitted instead of sent as empty strings; every byte costs airtime.
func reduceRecord(rec telemetry.Record) telemetry.Record {
	out := make(telemetry.Record, len(airborneFields))
	for _, name := range airborneFields {
		if v, ok := rec.Field(name); ok {
			out[name] = v
		}
	}
	return out
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
