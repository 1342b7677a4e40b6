package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func testExecutor(retries int) *Executor {
	return NewExecutor(ExecutorConfig{
		RetryCount:     retries,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}, nil, nil)
}

func TestExecute_Success(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"Customer":{"Id":"1"}}`))
	}))
	defer server.Close()

	resp, err := testExecutor(1).Execute(context.Background(), Request{
		Method: "POST",
		URL:    server.URL + "/v3/company/1/customer",
		Header: map[string]string{"Authorization": "Bearer tok"},
		Body:   `{"DisplayName":"Acme"}`,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	if string(resp.Body) != `{"Customer":{"Id":"1"}}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization header sent = %q", gotAuth)
	}
	if gotBody != `{"DisplayName":"Acme"}` {
		t.Errorf("request body sent = %q", gotBody)
	}
}

func TestExecute_Non2xxIsNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"Fault":{}}`))
	}))
	defer server.Close()

	resp, err := testExecutor(1).Execute(context.Background(), Request{
		Method: "GET",
		URL:    server.URL + "/v3/company/1/customer/1",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil for HTTP 500", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
}

func TestExecute_InvalidMethod(t *testing.T) {
	_, err := testExecutor(3).Execute(context.Background(), Request{
		Method: "PATCH",
		URL:    "http://localhost/v3/company/1/customer",
	})
	if !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Execute() error = %v, want ErrInvalidMethod", err)
	}
}

func TestExecute_ConnectionFailureRetriesThenNetworkError(t *testing.T) {
	// Grab a port and close the listener so connections are refused.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := server.URL
	server.Close()

	start := time.Now()
	_, err := testExecutor(3).Execute(context.Background(), Request{
		Method: "GET",
		URL:    target + "/v3/company/1/customer/1",
	})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Execute() error = %v, want ErrNetwork", err)
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Execute() error = %T, want *NetworkError", err)
	}
	if netErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", netErr.Attempts)
	}
	if netErr.Err == nil {
		t.Error("NetworkError.Err is nil, want the underlying failure")
	}
	// Two backoff sleeps of >= 1ms happened.
	if time.Since(start) < 2*time.Millisecond {
		t.Error("Execute() returned too fast to have backed off between attempts")
	}
}

func TestExecute_RecoversMidRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("server does not support hijacking")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	resp, err := testExecutor(3).Execute(context.Background(), Request{
		Method: "GET",
		URL:    server.URL + "/v3/company/1/companyinfo/1",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestExecute_ReadTimeoutRetriesThenNetworkError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Hold the response until the client's read timeout fires.
		<-r.Context().Done()
	}))
	defer server.Close()

	e := NewExecutor(ExecutorConfig{
		ReadTimeout:    50 * time.Millisecond,
		RetryCount:     3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}, nil, nil)

	_, err := e.Execute(context.Background(), Request{
		Method: "GET",
		URL:    server.URL + "/v3/company/1/customer/1",
	})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Execute() error = %v, want ErrNetwork", err)
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Execute() error = %T, want *NetworkError", err)
	}
	if netErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", netErr.Attempts)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestExecute_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := testExecutor(3).Execute(ctx, Request{
		Method: "GET",
		URL:    server.URL + "/v3/company/1/customer/1",
	})
	if !errors.Is(err, ErrConnection) {
		t.Errorf("Execute() error = %v, want ErrConnection (cancellation is not retried)", err)
	}
}

func TestIsTransient(t *testing.T) {
	if isTransient(nil) {
		t.Error("isTransient(nil) = true")
	}
	if isTransient(context.Canceled) {
		t.Error("context.Canceled must not be retried")
	}
	if !isTransient(os.ErrDeadlineExceeded) {
		t.Error("a read deadline on the attempt should be retried")
	}
	if !isTransient(io.ErrUnexpectedEOF) {
		t.Error("unexpected EOF should be retried")
	}
}
