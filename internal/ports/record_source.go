package ports

import "context"

// RecordSource supplies raw telemetry records to the bridge. The concrete
// datagram listener lives outside this repository; implementations here
// are limited to diagnostic inputs.
type RecordSource interface {
	// Listen delivers each received record payload to handle until the
	// context is canceled or the source is exhausted. handle must not
	// retain the slice past its return.
	Listen(ctx context.Context, handle func(data []byte)) error
}
