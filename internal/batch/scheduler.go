// Package batch implements the threshold scheduler that decides when a
// burst of incoming telemetry items collapses into a single outgoing
// transmission.
//
// A scheduler is Idle until the first Receive arms a deadline; it then
// accumulates items until either the count threshold or the time
// threshold is crossed, whichever comes first. On firing it hands the
// consumer only the most recently received item (older items in the
// window are discarded by design, since only the latest fix is actionable
// for a live tracker) and atomically returns to Idle.
//
// One mutex guards the buffer and deadline. Both the producer path
// (Receive) and the background timer serialize the check-fire-reset
// sequence through it, so a window fires exactly once even when the count
// threshold and the deadline race. The consumer runs outside the lock.
package batch

import (
	"fmt"
	"sync"
	"time"

	"github.com/sonde-labs/sondebridge/internal/ports"
	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

const (
	// defaultPollInterval is the timer granularity. The contract only
	// requires firing no later than the time threshold plus one tick.
	defaultPollInterval = 100 * time.Millisecond

	// stopTimeout bounds the wait for the timer goroutine on Stop. The
	// wait is bounded rather than unconditional so Stop cannot deadlock
	// when invoked from inside a consumer callback.
	stopTimeout = 5 * time.Second
)

// Scheduler accumulates items and triggers a single downstream emission
// per accumulation window. It is generic over the item type and safe for
// concurrent producers.
type Scheduler[T any] struct {
	mu       sync.Mutex
	count    int
	window   time.Duration
	buf      []T
	deadline time.Time // zero while idle

	consumer Consumer[T]
	logger   ports.Logger
	poll     time.Duration

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures optional scheduler behavior.
type Option[T any] func(*Scheduler[T])

// WithLogger sets the logger used for consumer failures.
func WithLogger[T any](logger ports.Logger) Option[T] {
	return func(s *Scheduler[T]) { s.logger = logger }
}

// WithPollInterval overrides the background timer granularity.
func WithPollInterval[T any](d time.Duration) Option[T] {
	return func(s *Scheduler[T]) { s.poll = d }
}

// NewScheduler creates a scheduler that fires after countThreshold items
// or timeThreshold elapsed since the first item, whichever comes first.
func NewScheduler[T any](countThreshold int, timeThreshold time.Duration, consumer Consumer[T], opts ...Option[T]) (*Scheduler[T], error) {
	if countThreshold <= 0 {
		return nil, fmt.Errorf("%w: count threshold must be positive", telemetry.ErrInvalidConfig)
	}
	if timeThreshold <= 0 {
		return nil, fmt.Errorf("%w: time threshold must be positive", telemetry.ErrInvalidConfig)
	}
	if consumer == nil {
		return nil, fmt.Errorf("%w: consumer is required", telemetry.ErrInvalidConfig)
	}
	s := &Scheduler[T]{
		count:    countThreshold,
		window:   timeThreshold,
		consumer: consumer,
		logger:   noopLogger{},
		poll:     defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start launches the background timer goroutine.
func (s *Scheduler[T]) Start() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return telemetry.ErrAlreadyRunning
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true
	go s.timerLoop(s.stopCh, s.doneCh)
	return nil
}

// Stop signals the timer goroutine to exit and waits for it with a
// bounded timeout. Buffered items are not flushed; call Flush first if
// the last window must still go out.
func (s *Scheduler[T]) Stop() error {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return telemetry.ErrNotRunning
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.runMu.Unlock()

	select {
	case <-done:
		return nil
	case <-time.After(stopTimeout):
		return telemetry.ErrShutdownTimeout
	}
}

// Receive appends an item to the current window, arming the deadline when
// the window opens, and fires if the count threshold is now met.
func (s *Scheduler[T]) Receive(item T) {
	s.mu.Lock()
	s.buf = append(s.buf, item)
	if len(s.buf) == 1 {
		s.deadline = time.Now().Add(s.window)
	}
	if len(s.buf) < s.count {
		s.mu.Unlock()
		return
	}
	last := s.takeLocked()
	s.mu.Unlock()

	s.deliver(last)
}

// Flush fires the current window immediately regardless of thresholds.
// It is a no-op when the scheduler is idle.
func (s *Scheduler[T]) Flush() {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	last := s.takeLocked()
	s.mu.Unlock()

	s.deliver(last)
}

// SetThresholds replaces both thresholds at runtime. If the buffered
// count already satisfies the new count threshold the window fires
// immediately; an armed deadline keeps its original expiry.
func (s *Scheduler[T]) SetThresholds(countThreshold int, timeThreshold time.Duration) error {
	if countThreshold <= 0 || timeThreshold <= 0 {
		return fmt.Errorf("%w: thresholds must be positive", telemetry.ErrInvalidConfig)
	}
	s.mu.Lock()
	s.count = countThreshold
	s.window = timeThreshold
	if len(s.buf) == 0 || len(s.buf) < s.count {
		s.mu.Unlock()
		return nil
	}
	last := s.takeLocked()
	s.mu.Unlock()

	s.deliver(last)
	return nil
}

// Pending returns the number of items buffered in the current window.
func (s *Scheduler[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Idle reports whether the scheduler has an open accumulation window.
func (s *Scheduler[T]) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) == 0 && s.deadline.IsZero()
}

// takeLocked extracts the latest item and resets buffer and deadline as
// one atomic unit. Callers must hold s.mu.
func (s *Scheduler[T]) takeLocked() T {
	last := s.buf[len(s.buf)-1]
	var zero T
	for i := range s.buf {
		s.buf[i] = zero // release references held by the window
	}
	s.buf = s.buf[:0]
	s.deadline = time.Time{}
	return last
}

// deliver invokes the consumer outside the lock. The window is already
// reset, so a failing consumer cannot leave the scheduler accumulating.
func (s *Scheduler[T]) deliver(item T) {
	if err := s.consumer.Consume(item); err != nil {
		s.logger.Warn("consumer failed, window discarded", ports.Err(err))
	}
}

func (s *Scheduler[T]) timerLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			s.fireIfExpired(now)
		}
	}
}

func (s *Scheduler[T]) fireIfExpired(now time.Time) {
	s.mu.Lock()
	if s.deadline.IsZero() || now.Before(s.deadline) {
		s.mu.Unlock()
		return
	}
	last := s.takeLocked()
	s.mu.Unlock()

	s.deliver(last)
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
