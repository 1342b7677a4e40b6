package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how the delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by the initial delay each attempt.
	BackoffLinear
	// BackoffConstant keeps the delay fixed.
	BackoffConstant
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts bounds the total attempts, the first included.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the wait before the first re-attempt.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier scales the exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy picks the backoff curve.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter spreads the delay by up to 25% to avoid synchronized
	// re-attempts. Default: false
	Jitter bool

	// RetryIf classifies an error as retryable. When nil, every
	// non-nil error is retried.
	RetryIf func(err error) bool

	// OnRetry observes each re-attempt before its delay elapses.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs an operation until it succeeds, the error is classified
// as permanent, or the attempt bound is reached.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation under the retry policy. A non-retryable
// error propagates immediately; on exhaustion the last error is
// returned unchanged so the caller can still classify it.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := 0
	for {
		attempt++

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !r.config.RetryIf(err) || attempt >= r.config.MaxAttempts {
			return err
		}

		delay := r.backoffDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// backoffDelay computes the wait after the given 1-based attempt.
func (r *Retry) backoffDelay(attempt int) time.Duration {
	base := r.config.InitialDelay

	var delay time.Duration
	switch r.config.Strategy {
	case BackoffConstant:
		delay = base
	case BackoffLinear:
		delay = base * time.Duration(attempt)
	default:
		delay = time.Duration(float64(base) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
