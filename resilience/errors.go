package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without invoking the operation.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrPoolTimeout is returned when a connection slot could not be
	// checked out within the configured wait.
	ErrPoolTimeout = errors.New("resilience: connection pool checkout timed out")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")
)
