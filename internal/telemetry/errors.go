package telemetry

import "errors"

// Domain errors for the sondebridge pipeline.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrMalformedFrame is returned when binary input does not parse as a
	// compact telemetry map. Decode aborts; the error is never swallowed.
	ErrMalformedFrame = errors.New("sondebridge: malformed frame")

	// ErrInvalidRegistry is returned when a field registry violates the
	// name/key bijection or declares a non-positive scale.
	ErrInvalidRegistry = errors.New("sondebridge: invalid registry")

	// ErrAlreadyRunning is returned when Start() is called on a running component.
	ErrAlreadyRunning = errors.New("sondebridge: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped component.
	ErrNotRunning = errors.New("sondebridge: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("sondebridge: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("sondebridge: invalid configuration")
)
