package qbclient

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Version is the library version reported in the User-Agent header.
const Version = "1.0.0"

// ErrConfiguration is returned for invalid setup values.
var ErrConfiguration = errors.New("qbclient: invalid configuration")

// Environment selects the API host.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	sandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionBaseURL = "https://quickbooks.api.intuit.com"
)

// Config supplies the policy knobs for a Client. The zero value of every
// field has a usable default; toggles are phrased so that zero means the
// safe choice (auto-refresh on, TLS verification on).
type Config struct {
	// Environment is sandbox or production. Default: sandbox
	Environment Environment

	// ClientID and ClientSecret are the OAuth application credentials.
	ClientID     string
	ClientSecret string

	// BaseURL overrides the environment-derived API host.
	BaseURL string

	// OAuthBaseURL overrides the OAuth host.
	OAuthBaseURL string

	// ConnectTimeout bounds connection establishment. Default: 10s
	ConnectTimeout time.Duration

	// ReadTimeout bounds a single HTTP exchange. Default: 30s
	ReadTimeout time.Duration

	// RetryCount is the total send attempts for transient transport
	// failures. Default: 3
	RetryCount int

	// RetryBaseDelay is the first backoff delay. Default: 500ms
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay. Default: 10s
	RetryMaxDelay time.Duration

	// PoolSize is the per-realm connection slot capacity. Default: 5
	PoolSize int

	// PoolTimeout is the slot checkout wait bound. Default: 10s
	PoolTimeout time.Duration

	// RateLimitRetries is how many times a rate-limited call is
	// re-issued after sleeping out the Retry-After cool-down. Zero
	// selects the default of 1; a negative value disables re-issue
	// entirely.
	RateLimitRetries int

	// RefreshThreshold is how close to expiry the token may get before
	// it is refreshed ahead of a call. Default: 5 minutes
	RefreshThreshold time.Duration

	// MinorVersion is merged into every request's query set when set.
	MinorVersion string

	// DisableAutoRefresh turns off the pre-dispatch token refresh.
	DisableAutoRefresh bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

func (c Config) withDefaults() Config {
	if c.Environment == "" {
		c.Environment = EnvironmentSandbox
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.RetryCount <= 0 {
		c.RetryCount = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 10 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 5
	}
	if c.PoolTimeout <= 0 {
		c.PoolTimeout = 10 * time.Second
	}
	if c.RateLimitRetries < 0 {
		c.RateLimitRetries = 0
	} else if c.RateLimitRetries == 0 {
		c.RateLimitRetries = 1
	}
	if c.RefreshThreshold <= 0 {
		c.RefreshThreshold = 5 * time.Minute
	}
	return c
}

// Validate checks the configuration. It is called by New after defaults
// are applied.
func (c Config) Validate() error {
	switch c.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
	default:
		return fmt.Errorf("%w: unknown environment %q", ErrConfiguration, c.Environment)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrConfiguration)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: client secret is required", ErrConfiguration)
	}
	return nil
}

// apiBaseURL resolves the API host for the environment.
func (c Config) apiBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == EnvironmentProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// ConfigFromEnv loads a Config from QB_* environment variables:
// QB_ENVIRONMENT, QB_CLIENT_ID, QB_CLIENT_SECRET, QB_BASE_URL,
// QB_OAUTH_BASE_URL, QB_RETRY_COUNT, QB_POOL_SIZE, QB_MINOR_VERSION.
// Unset variables keep their defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		Environment:  Environment(os.Getenv("QB_ENVIRONMENT")),
		ClientID:     os.Getenv("QB_CLIENT_ID"),
		ClientSecret: os.Getenv("QB_CLIENT_SECRET"),
		BaseURL:      os.Getenv("QB_BASE_URL"),
		OAuthBaseURL: os.Getenv("QB_OAUTH_BASE_URL"),
		MinorVersion: os.Getenv("QB_MINOR_VERSION"),
	}
	if v, err := strconv.Atoi(os.Getenv("QB_RETRY_COUNT")); err == nil {
		cfg.RetryCount = v
	}
	if v, err := strconv.Atoi(os.Getenv("QB_POOL_SIZE")); err == nil {
		cfg.PoolSize = v
	}
	return cfg
}
