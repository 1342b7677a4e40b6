package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewInstruments_NilProviders(t *testing.T) {
	in, err := NewInstruments(nil, nil)
	if err != nil {
		t.Fatalf("NewInstruments() error = %v", err)
	}

	// Must be safe to record against no-op providers.
	ctx, span := in.StartRequest(context.Background(), "GET", "customer/1", "realm-1")
	in.EndRequest(span, 200, nil)
	in.RecordRequest(ctx, "GET", 10*time.Millisecond, nil)
	in.RecordRetry(ctx)
	in.RecordRefresh(ctx, nil)
	in.RecordBreakerTransition(ctx, "closed", "open")
}

func TestInstruments_RequestSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	in, err := NewInstruments(tp, nil)
	if err != nil {
		t.Fatalf("NewInstruments() error = %v", err)
	}

	_, span := in.StartRequest(context.Background(), "POST", "customer", "realm-9")
	in.EndRequest(span, 201, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "qbclient.request" {
		t.Errorf("span name = %q, want qbclient.request", got.Name())
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", got.Status().Code)
	}

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["http.request.method"] != "POST" {
		t.Errorf("method attr = %q, want POST", attrs["http.request.method"])
	}
	if attrs["qb.realm_id"] != "realm-9" {
		t.Errorf("realm attr = %q, want realm-9", attrs["qb.realm_id"])
	}
	if attrs["http.response.status_code"] != "201" {
		t.Errorf("status attr = %q, want 201", attrs["http.response.status_code"])
	}
}

func TestInstruments_RequestSpanError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	in, err := NewInstruments(tp, nil)
	if err != nil {
		t.Fatalf("NewInstruments() error = %v", err)
	}

	_, span := in.StartRequest(context.Background(), "GET", "customer/1", "realm-9")
	in.EndRequest(span, 0, errors.New("connection refused"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected a recorded error event on the span")
	}
}
