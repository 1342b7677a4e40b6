package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})

	if r.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", r.config.InitialDelay)
	}
	if r.config.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.config.MaxDelay)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", r.config.Multiplier)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ExhaustionReturnsLastError(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
	})

	lastErr := errors.New("always fails")
	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return lastErr
	})

	if err != lastErr {
		t.Errorf("Execute() error = %v, want the original %v", err, lastErr)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("fatal")

	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return !errors.Is(err, fatal)
		},
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return fatal
	})

	if err != fatal {
		t.Errorf("Execute() error = %v, want %v", err, fatal)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_ContextCanceledDuringBackoff(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())

	err := r.Execute(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var delays []time.Duration

	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("transient")
	})

	if len(delays) != 2 {
		t.Fatalf("OnRetry called %d times, want 2", len(delays))
	}
}

func TestRetry_ExponentialDelay(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second}, // capped
	}

	for _, tt := range tests {
		if got := r.backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetry_LinearDelay(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: 10 * time.Millisecond,
		Strategy:     BackoffLinear,
	})

	if got := r.backoffDelay(3); got != 30*time.Millisecond {
		t.Errorf("backoffDelay(3) = %v, want 30ms", got)
	}
}

func TestRetry_ConstantDelay(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: 10 * time.Millisecond,
		Strategy:     BackoffConstant,
	})

	if got := r.backoffDelay(5); got != 10*time.Millisecond {
		t.Errorf("backoffDelay(5) = %v, want 10ms", got)
	}
}
