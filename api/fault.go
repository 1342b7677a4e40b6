package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/qbclient/transport"
)

// FaultError is one structured error entry from the vendor fault
// envelope.
type FaultError struct {
	Code    string
	Message string
	Detail  string
	Element string
}

// ErrorResponse is a classified non-2xx response. Immutable once built.
type ErrorResponse struct {
	Body       map[string]any
	StatusCode int
	Header     http.Header
	Request    transport.Request

	errors []FaultError
}

// newErrorResponse builds an ErrorResponse, extracting fault entries
// eagerly.
func newErrorResponse(body map[string]any, statusCode int, header http.Header, req transport.Request) *ErrorResponse {
	er := &ErrorResponse{
		Body:       body,
		StatusCode: statusCode,
		Header:     header,
		Request:    req,
	}
	er.errors = er.extractErrors()
	return er
}

// Errors returns the structured error entries extracted from the fault
// envelope ({"Fault":{"Error":[...]}}). When the envelope is absent, a
// single entry is synthesized from the status code and any top-level
// message or error field.
func (er *ErrorResponse) Errors() []FaultError {
	return er.errors
}

func (er *ErrorResponse) extractErrors() []FaultError {
	fault, ok := er.Body["Fault"].(map[string]any)
	if ok {
		if raw, ok := fault["Error"].([]any); ok && len(raw) > 0 {
			entries := make([]FaultError, 0, len(raw))
			for _, e := range raw {
				entry, ok := e.(map[string]any)
				if !ok {
					continue
				}
				entries = append(entries, FaultError{
					Code:    stringField(entry, "code"),
					Message: stringField(entry, "Message", "message"),
					Detail:  stringField(entry, "Detail", "detail"),
					Element: stringField(entry, "element"),
				})
			}
			if len(entries) > 0 {
				return entries
			}
		}
	}

	msg := stringField(er.Body, "message", "error")
	if msg == "" {
		msg = http.StatusText(er.StatusCode)
	}
	return []FaultError{{
		Code:    strconv.Itoa(er.StatusCode),
		Message: msg,
	}}
}

// faultType returns the envelope's fault type, e.g. "ValidationFault".
func (er *ErrorResponse) faultType() string {
	if fault, ok := er.Body["Fault"].(map[string]any); ok {
		return stringField(fault, "type")
	}
	return ""
}

// message joins all entries as "code: message" pairs.
func (er *ErrorResponse) message() string {
	parts := make([]string, len(er.errors))
	for i, e := range er.errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return strings.Join(parts, "; ")
}

// RetryAfter parses the Retry-After header as whole seconds. Zero when
// absent or malformed.
func (er *ErrorResponse) RetryAfter() time.Duration {
	v := er.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Err converts the response into its typed error. The kind is chosen by
// status code:
//
//	401                 ErrAuthentication
//	404                 ErrNotFound
//	409                 ErrConflict
//	429                 ErrRateLimit (carries Retry-After)
//	500, 502, 503, 504  ErrServiceUnavailable
//	other               ErrAPI (ErrValidation for a ValidationFault)
func (er *ErrorResponse) Err() error {
	e := &Error{
		StatusCode: er.StatusCode,
		message:    er.message(),
		Response:   er,
	}
	if len(er.errors) > 0 {
		e.Code = er.errors[0].Code
		e.Detail = er.errors[0].Detail
	}

	switch er.StatusCode {
	case http.StatusUnauthorized:
		e.kind = ErrAuthentication
	case http.StatusNotFound:
		e.kind = ErrNotFound
	case http.StatusConflict:
		e.kind = ErrConflict
	case http.StatusTooManyRequests:
		e.kind = ErrRateLimit
		e.RetryAfter = er.RetryAfter()
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		e.kind = ErrServiceUnavailable
	default:
		if er.faultType() == "ValidationFault" {
			e.kind = ErrValidation
		} else {
			e.kind = ErrAPI
		}
	}

	return e
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
