package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures a Timeout.
type TimeoutConfig struct {
	// Timeout bounds the whole operation.
	// Default: 30s
	Timeout time.Duration
}

// Timeout bounds a whole call. Wrapped around a client dispatch it
// covers token refresh, pool wait, and every transport retry inside.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs the operation under the deadline. The operation receives
// a derived context and keeps running in the background after the
// deadline fires; it is expected to honor cancellation promptly.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
