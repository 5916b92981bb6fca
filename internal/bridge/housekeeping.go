package bridge

import (
	"context"
	"time"

	"github.com/sonde-labs/sondebridge/internal/ports"
)

// Housekeeper reboots the radio device on a fixed interval. Long-running
// deployments do this to clear wedged firmware state. The task owns no
// shared state; it is independent of the scheduler's timer and stops when
// its context is canceled.
type Housekeeper struct {
	interval time.Duration
	radio    ports.Rebooter
	logger   ports.Logger
}

// NewHousekeeper creates a housekeeping task with the given reboot interval.
func NewHousekeeper(interval time.Duration, radio ports.Rebooter, logger ports.Logger) *Housekeeper {
	return &Housekeeper{interval: interval, radio: radio, logger: logger}
}

// Run blocks until ctx is canceled, rebooting the radio every interval.
func (h *Housekeeper) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := h.radio.Reboot(ctx); err != nil {
				h.logger.Error("radio reboot failed", ports.Err(err))
				continue
			}
			h.logger.Info("radio rebooted", ports.Duration("interval", h.interval))
		}
	}
}
