package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AuthorizationProvider supplies the bearer header value for outgoing
// requests. *oauth.Manager satisfies it.
type AuthorizationProvider interface {
	AuthorizationHeader() string
}

// BuilderConfig configures a request Builder.
type BuilderConfig struct {
	// BaseURL is the API host, e.g. https://sandbox-quickbooks.api.intuit.com.
	BaseURL string

	// RealmID is the company realm all requests are scoped to.
	RealmID string

	// Environment tags request metadata (sandbox or production).
	Environment string

	// UserAgent overrides the default user-agent header.
	UserAgent string
}

// Builder constructs immutable Request values. It performs no I/O.
type Builder struct {
	config BuilderConfig
	auth   AuthorizationProvider
}

// NewBuilder creates a request builder.
func NewBuilder(config BuilderConfig, auth AuthorizationProvider) *Builder {
	if config.UserAgent == "" {
		config.UserAgent = "qbclient-go"
	}
	return &Builder{config: config, auth: auth}
}

// Build constructs a request for {base}/v3/company/{realm}/{endpoint}.
//
// The merged query set (including minorversion, when given) is appended
// only if non-empty. Caller headers merge over the defaults
// last-write-wins, Authorization included. A string body passes through
// unchanged; any other non-nil body is JSON-serialized.
func (b *Builder) Build(method, endpoint string, query url.Values, body any, headers map[string]string, minorVersion string) (Request, error) {
	u := strings.TrimSuffix(b.config.BaseURL, "/") +
		"/v3/company/" + b.config.RealmID +
		"/" + strings.TrimPrefix(endpoint, "/")

	merged := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	if minorVersion != "" {
		merged.Set("minorversion", minorVersion)
	}
	if len(merged) > 0 {
		u += "?" + merged.Encode()
	}

	serialized, err := serializeBody(body)
	if err != nil {
		return Request{}, err
	}

	header := map[string]string{
		"Authorization": b.auth.AuthorizationHeader(),
		"Accept":        "application/json",
		"Content-Type":  "application/json",
		"User-Agent":    b.config.UserAgent,
	}
	for k, v := range headers {
		header[k] = v
	}

	return Request{
		Method: method,
		URL:    u,
		Header: header,
		Body:   serialized,
		Meta: Metadata{
			RealmID:     b.config.RealmID,
			Environment: b.config.Environment,
			CreatedAt:   time.Now(),
		},
	}, nil
}

func serializeBody(body any) (string, error) {
	switch v := body.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("serialize body: %w", err)
		}
		return string(data), nil
	}
}
