package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/qbclient/observe"
	"github.com/jonwraymond/qbclient/transport"
)

// metadata keys are top-level response keys that never name an entity.
var metadataKeys = map[string]bool{
	"time": true,
}

// Pagination is the paging metadata of a query-shaped response.
type Pagination struct {
	StartPosition int
	MaxResults    int
	TotalCount    int
}

// SuccessResponse is a classified 2xx response. Immutable once built.
type SuccessResponse struct {
	Body       map[string]any
	StatusCode int
	Header     http.Header
	Request    transport.Request
}

// Entity returns the payload's entity name and value. For a query-shaped
// body ({"QueryResponse": {...}}) it returns the single entity
// collection inside the wrapper; otherwise the first top-level key that
// is not a known metadata key.
func (sr *SuccessResponse) Entity() (string, any) {
	if qr, ok := sr.Body["QueryResponse"].(map[string]any); ok {
		for k, v := range qr {
			if paginationKeys[k] {
				continue
			}
			return k, v
		}
		return "", nil
	}

	for k, v := range sr.Body {
		if metadataKeys[k] {
			continue
		}
		return k, v
	}
	return "", nil
}

var paginationKeys = map[string]bool{
	"startPosition": true,
	"maxResults":    true,
	"totalCount":    true,
}

// Pagination returns the paging metadata when the body is query-shaped
// and all three fields are present.
func (sr *SuccessResponse) Pagination() (Pagination, bool) {
	qr, ok := sr.Body["QueryResponse"].(map[string]any)
	if !ok {
		return Pagination{}, false
	}

	start, okStart := intField(qr, "startPosition")
	max, okMax := intField(qr, "maxResults")
	total, okTotal := intField(qr, "totalCount")
	if !okStart || !okMax || !okTotal {
		return Pagination{}, false
	}

	return Pagination{StartPosition: start, MaxResults: max, TotalCount: total}, true
}

// HasMore reports whether another page exists:
// startPosition + maxResults < totalCount, when all three are present.
func (sr *SuccessResponse) HasMore() bool {
	p, ok := sr.Pagination()
	if !ok {
		return false
	}
	return p.StartPosition+p.MaxResults < p.TotalCount
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// Handler classifies raw HTTP responses into typed results.
type Handler struct {
	log observe.Logger
}

// NewHandler creates a response handler. logger may be nil.
func NewHandler(logger observe.Logger) *Handler {
	if logger == nil {
		logger = observe.NopLogger{}
	}
	return &Handler{log: logger}
}

// Handle classifies the response: 2xx becomes a SuccessResponse, any
// other status becomes a typed *Error built from the fault envelope.
// The body is parsed defensively; a malformed body degrades to a
// diagnostic payload instead of failing the call.
func (h *Handler) Handle(ctx context.Context, raw *transport.Response, req transport.Request) (*SuccessResponse, error) {
	body := h.parseBody(ctx, raw.Body)

	if raw.StatusCode >= 200 && raw.StatusCode < 300 {
		return &SuccessResponse{
			Body:       body,
			StatusCode: raw.StatusCode,
			Header:     raw.Header,
			Request:    req,
		}, nil
	}

	return nil, newErrorResponse(body, raw.StatusCode, raw.Header, req).Err()
}

func (h *Handler) parseBody(ctx context.Context, data []byte) map[string]any {
	if len(data) == 0 {
		return map[string]any{}
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		h.log.Warn(ctx, "response body is not valid JSON", observe.Err(err))
		return map[string]any{
			"rawResponse": string(data),
			"parseError":  err.Error(),
		}
	}
	if body == nil {
		return map[string]any{}
	}
	return body
}
