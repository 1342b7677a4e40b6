package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonwraymond/qbclient/observe"
	"github.com/jonwraymond/qbclient/resilience"
)

// Response is the raw HTTP response an Executor returns. Status codes
// are classified by the api package, not here.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ExecutorConfig configures the HTTP executor.
type ExecutorConfig struct {
	// ConnectTimeout bounds connection establishment.
	// Default: 10 seconds
	ConnectTimeout time.Duration

	// ReadTimeout bounds the whole exchange once connected.
	// Default: 30 seconds
	ReadTimeout time.Duration

	// RetryCount is the total number of send attempts for transient
	// failures. Default: 3
	RetryCount int

	// RetryBaseDelay is the first backoff delay.
	// Default: 500ms
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay.
	// Default: 10 seconds
	RetryMaxDelay time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	// Default: false (verify on)
	InsecureSkipVerify bool
}

// Executor sends requests over the wire, retrying transient network
// failures with exponential backoff.
type Executor struct {
	config ExecutorConfig
	rest   *resty.Client
	log    observe.Logger
	inst   *observe.Instruments
}

// NewExecutor creates an executor. logger and inst may be nil.
func NewExecutor(config ExecutorConfig, logger observe.Logger, inst *observe.Instruments) *Executor {
	// Apply defaults
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 30 * time.Second
	}
	if config.RetryCount <= 0 {
		config.RetryCount = 3
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = 500 * time.Millisecond
	}
	if config.RetryMaxDelay <= 0 {
		config.RetryMaxDelay = 10 * time.Second
	}
	if logger == nil {
		logger = observe.NopLogger{}
	}
	if inst == nil {
		inst, _ = observe.NewInstruments(nil, nil)
	}

	rest := resty.New().
		SetTimeout(config.ReadTimeout).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: config.ConnectTimeout}).DialContext,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.InsecureSkipVerify, // #nosec G402
			},
		}).
		SetRetryCount(0) // the executor owns the retry loop

	return &Executor{
		config: config,
		rest:   rest,
		log:    logger,
		inst:   inst,
	}
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Execute sends the request. Timeouts and connection-level failures are
// retried up to the configured attempt count with exponential backoff;
// after exhaustion they surface as *NetworkError with the attempt count.
// Any other send failure wraps immediately in *ConnectionError. A
// non-2xx HTTP status is not a failure at this layer.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	if !allowedMethods[req.Method] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}

	start := time.Now()
	attempts := 0

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  e.config.RetryCount,
		InitialDelay: e.config.RetryBaseDelay,
		MaxDelay:     e.config.RetryMaxDelay,
		// The caller abandoning the call is checked on the context, not
		// the error chain: a per-attempt read timeout also satisfies
		// errors.Is(err, context.DeadlineExceeded) and must stay
		// retryable.
		RetryIf: func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			return isTransient(err)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			e.inst.RecordRetry(ctx)
			e.log.Warn(ctx, "retrying request",
				observe.String("url", req.Sanitized().URL),
				observe.Int("attempt", attempt),
				observe.Duration("backoff", delay),
				observe.Err(err),
			)
		},
	})

	var resp *Response
	err := retry.Execute(ctx, func(ctx context.Context) error {
		attempts++
		r := e.rest.R().SetContext(ctx).SetHeaders(req.Header)
		if req.HasBody() {
			r.SetBody(req.Body)
		}
		raw, err := r.Execute(req.Method, req.URL)
		if err != nil {
			return err
		}
		resp = &Response{
			StatusCode: raw.StatusCode(),
			Header:     raw.Header(),
			Body:       raw.Body(),
		}
		return nil
	})

	duration := time.Since(start)
	e.inst.RecordRequest(ctx, req.Method, duration, err)

	if err != nil {
		e.log.Error(ctx, "request failed",
			observe.String("method", req.Method),
			observe.String("url", req.Sanitized().URL),
			observe.Int("attempts", attempts),
			observe.Duration("duration", duration),
			observe.Err(err),
		)
		if ctx.Err() == nil && isTransient(err) {
			return nil, &NetworkError{Attempts: attempts, Err: err}
		}
		return nil, &ConnectionError{Err: err}
	}

	e.log.Debug(ctx, "request completed",
		observe.String("method", req.Method),
		observe.String("url", req.Sanitized().URL),
		observe.Int("status", resp.StatusCode),
		observe.Int("attempts", attempts),
		observe.Duration("duration", duration),
	)
	return resp, nil
}

// isTransient classifies failures worth retrying: timeouts and
// connection-level errors. Cancellation and DNS resolution failures are
// not retried. A deadline on the attempt counts as a timeout here; the
// caller's own deadline is checked against the context in Execute.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// url.Error covers the remaining socket-level failures surfaced by
	// the HTTP client.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
