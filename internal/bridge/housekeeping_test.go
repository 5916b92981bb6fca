package bridge

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRebooter struct {
	calls atomic.Int64
	err   error
}

func (f *fakeRebooter) Reboot(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestHousekeeper_RebootsOnInterval(t *testing.T) {
	radio := &fakeRebooter{}
	hk := NewHousekeeper(20*time.Millisecond, radio, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hk.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return radio.calls.Load() >= 2 }, "radio never rebooted")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestHousekeeper_KeepsRunningAfterRebootFailure(t *testing.T) {
	radio := &fakeRebooter{err: errors.New("device busy")}
	hk := NewHousekeeper(10*time.Millisecond, radio, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hk.Run(ctx)

	// Failures are logged and the ticker keeps firing.
	waitFor(t, func() bool { return radio.calls.Load() >= 3 }, "housekeeper stopped after a failure")
}
