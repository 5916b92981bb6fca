package ports

import (
	"context"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// UplinkPublisher republishes a decoded record to a remote aggregation
// service on the receiving side of the link. The concrete HTTP client
// lives outside this repository.
type UplinkPublisher interface {
	Publish(ctx context.Context, rec telemetry.Record) error
}
