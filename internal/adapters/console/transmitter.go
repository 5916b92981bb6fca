// Package console provides a FrameTransmitter that writes frames to a
// local writer instead of a radio. It produces the hex diagnostic echo of
// the encoded frame, one payload per line, and is used by the CLI when no
// radio transport is attached.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Transmitter writes frame payloads to an io.Writer.
type Transmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTransmitter creates a transmitter writing to w.
func NewTransmitter(w io.Writer) *Transmitter {
	return &Transmitter{w: w}
}

// Transmit writes the payload followed by a newline.
func (t *Transmitter) Transmit(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.w, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
