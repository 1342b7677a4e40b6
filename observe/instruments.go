package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const scopeName = "github.com/jonwraymond/qbclient"

// Instruments bundles the tracer and meters the client records against.
// All methods are safe for concurrent use and never panic.
type Instruments struct {
	tracer trace.Tracer

	requestCount metric.Int64Counter
	retryCount   metric.Int64Counter
	refreshCount metric.Int64Counter
	breakerTrips metric.Int64Counter
	requestDurMs metric.Float64Histogram
}

// NewInstruments creates Instruments from the given providers. Nil
// providers fall back to no-op implementations.
func NewInstruments(tp trace.TracerProvider, mp metric.MeterProvider) (*Instruments, error) {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}

	meter := mp.Meter(scopeName)

	requestCount, err := meter.Int64Counter(
		"qbclient.requests",
		metric.WithDescription("Total number of API requests dispatched"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"qbclient.retries",
		metric.WithDescription("Total number of transport-level retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	refreshCount, err := meter.Int64Counter(
		"qbclient.token_refreshes",
		metric.WithDescription("Total number of OAuth token refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	breakerTrips, err := meter.Int64Counter(
		"qbclient.breaker_transitions",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	requestDurMs, err := meter.Float64Histogram(
		"qbclient.request.duration_ms",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		tracer:       tp.Tracer(scopeName),
		requestCount: requestCount,
		retryCount:   retryCount,
		refreshCount: refreshCount,
		breakerTrips: breakerTrips,
		requestDurMs: requestDurMs,
	}, nil
}

// StartRequest starts a span for an outgoing API request.
func (in *Instruments) StartRequest(ctx context.Context, method, endpoint, realm string) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, "qbclient.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("qb.endpoint", endpoint),
			attribute.String("qb.realm_id", realm),
		),
	)
}

// EndRequest finishes the span, recording status and error outcome.
func (in *Instruments) EndRequest(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordRequest records one completed request with duration and outcome.
func (in *Instruments) RecordRequest(ctx context.Context, method string, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Bool("error", err != nil),
	)
	in.requestCount.Add(ctx, 1, opt)
	in.requestDurMs.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records a transport-level retry attempt.
func (in *Instruments) RecordRetry(ctx context.Context) {
	in.retryCount.Add(ctx, 1)
}

// RecordRefresh records an OAuth token refresh outcome.
func (in *Instruments) RecordRefresh(ctx context.Context, err error) {
	in.refreshCount.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("error", err != nil),
	))
}

// RecordBreakerTransition records a circuit breaker state transition.
func (in *Instruments) RecordBreakerTransition(ctx context.Context, from, to string) {
	in.breakerTrips.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}
