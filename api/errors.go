package api

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds for non-2xx API responses. Match with errors.Is.
var (
	// ErrAPI is the generic kind for unclassified HTTP statuses.
	ErrAPI = errors.New("api: request failed")

	// ErrValidation is returned for validation faults.
	ErrValidation = errors.New("api: validation failed")

	// ErrAuthentication is returned for HTTP 401.
	ErrAuthentication = errors.New("api: authentication failed")

	// ErrNotFound is returned for HTTP 404.
	ErrNotFound = errors.New("api: resource not found")

	// ErrConflict is returned for HTTP 409.
	ErrConflict = errors.New("api: resource conflict")

	// ErrRateLimit is returned for HTTP 429.
	ErrRateLimit = errors.New("api: rate limited")

	// ErrServiceUnavailable is returned for HTTP 500/502/503/504.
	ErrServiceUnavailable = errors.New("api: service unavailable")
)

// Error is a typed non-2xx API response. It carries the status code, the
// first vendor error code, and a back-reference to the full
// ErrorResponse it was built from.
type Error struct {
	kind    error
	message string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the first vendor error code from the fault envelope.
	Code string

	// Detail is the first vendor error detail from the fault envelope.
	Detail string

	// RetryAfter is the cool-down the vendor requested, set only for
	// rate-limit errors that carried a Retry-After header.
	RetryAfter time.Duration

	// Response references the classified response this error came from.
	Response *ErrorResponse
}

// Error returns the joined "code: message" of all fault entries.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.kind.Error(), e.StatusCode, e.message)
}

// Unwrap returns the sentinel kind so errors.Is can classify the error.
func (e *Error) Unwrap() error {
	return e.kind
}

// IsRetryableStatus reports whether the error represents a server-side
// condition worth retrying (rate limit or service unavailability).
func IsRetryableStatus(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrServiceUnavailable)
}
