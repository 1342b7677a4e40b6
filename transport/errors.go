package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport failures.
var (
	// ErrInvalidMethod is returned for HTTP methods the API does not
	// support. Never retried.
	ErrInvalidMethod = errors.New("transport: unsupported HTTP method")

	// ErrNetwork marks transient network failures that exhausted the
	// retry budget.
	ErrNetwork = errors.New("transport: network failure")

	// ErrConnection marks non-retryable failures while sending.
	ErrConnection = errors.New("transport: connection failure")
)

// NetworkError wraps the last transient failure after the retry budget
// is exhausted.
type NetworkError struct {
	// Attempts is the total number of send attempts made.
	Attempts int

	// Err is the last underlying failure.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrNetwork.Error(), e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// ConnectionError wraps a failure that is not worth retrying.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConnection.Error(), e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}
