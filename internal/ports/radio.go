package ports

import "context"

// FrameTransmitter carries an encoded frame over the long-range radio
// link. The payload is the hex text form of a binary frame, matching the
// radio's text message transport. Implementations handle connection
// management and addressing (direct node vs. channel broadcast).
type FrameTransmitter interface {
	// Transmit sends one frame payload. Delivery is not guaranteed;
	// retry policy belongs to the transport, not the caller.
	Transmit(ctx context.Context, payload string) error
}

// Rebooter restarts the radio device. Long-running deployments reboot the
// radio periodically to clear wedged firmware state.
type Rebooter interface {
	Reboot(ctx context.Context) error
}
