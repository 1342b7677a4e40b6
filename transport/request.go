package transport

import (
	"strings"
	"time"
)

// Metadata carries diagnostic context attached to a request at build time.
type Metadata struct {
	RealmID     string
	Environment string
	CreatedAt   time.Time
}

// Request is an immutable, fully constructed API request. The
// Authorization header is derived from the token manager at build time
// and is not re-derived later.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	// Body is the serialized request body; empty means no body.
	Body string
	Meta Metadata
}

// HasBody reports whether the request carries a body.
func (r Request) HasBody() bool {
	return r.Body != ""
}

// Sanitized returns a copy safe for logging: the Authorization header
// and any query string are stripped. The original is never mutated.
func (r Request) Sanitized() Request {
	out := r
	out.Header = make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		out.Header[k] = v
	}
	if i := strings.IndexByte(out.URL, '?'); i >= 0 {
		out.URL = out.URL[:i]
	}
	return out
}
