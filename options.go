package qbclient

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/qbclient/observe"
	"github.com/jonwraymond/qbclient/resilience"
)

// Option configures optional Client collaborators.
type Option func(*options)

type options struct {
	logger         observe.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	breaker        *resilience.CircuitBreaker
	limiter        *resilience.RateLimiter
	callTimeout    time.Duration
}

func newOptions() *options {
	return &options{
		logger: observe.NopLogger{},
	}
}

// WithLogger supplies a structured logger. The default discards all
// events.
func WithLogger(logger observe.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracerProvider supplies an OpenTelemetry tracer provider for
// request spans. The default is a no-op provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider supplies an OpenTelemetry meter provider for client
// counters. The default is a no-op provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithCircuitBreaker replaces the client's default circuit breaker.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(o *options) {
		if cb != nil {
			o.breaker = cb
		}
	}
}

// WithRateLimiter adds client-side request throttling. No limiter is
// installed by default.
func WithRateLimiter(rl *resilience.RateLimiter) Option {
	return func(o *options) {
		o.limiter = rl
	}
}

// WithCallTimeout bounds each whole call, including token refresh, pool
// wait, and every transport retry. No whole-call bound by default.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}
