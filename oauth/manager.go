package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/qbclient/observe"
)

const (
	tokenPath  = "/oauth2/v1/tokens/bearer"
	revokePath = "/oauth2/v1/tokens/revoke"
)

// ManagerConfig configures a token Manager.
type ManagerConfig struct {
	// ClientID and ClientSecret authenticate to the token endpoint with
	// client_secret_basic.
	ClientID     string
	ClientSecret string

	// BaseURL is the OAuth host.
	// Default: https://oauth.platform.intuit.com
	BaseURL string

	// RefreshThreshold is how close to expiry a token may get before
	// RefreshNeeded reports true. Default: 5 minutes
	RefreshThreshold time.Duration

	// Timeout is the HTTP timeout for token endpoint calls.
	// Default: 10 seconds
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used for token calls.
	HTTPClient *http.Client
}

// Manager owns exactly one Token at a time, decides when a refresh is
// needed, and performs the exchange. The held token is replaced, never
// mutated; concurrent refreshes coalesce into one exchange.
type Manager struct {
	config ManagerConfig
	http   *http.Client
	log    observe.Logger
	inst   *observe.Instruments

	mu    sync.RWMutex
	token *Token

	sf singleflight.Group
}

// NewManager creates a Manager holding the given token. logger and inst
// may be nil.
func NewManager(config ManagerConfig, token *Token, logger observe.Logger, inst *observe.Instruments) *Manager {
	// Apply defaults
	if config.BaseURL == "" {
		config.BaseURL = "https://oauth.platform.intuit.com"
	}
	if config.RefreshThreshold <= 0 {
		config.RefreshThreshold = 5 * time.Minute
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = observe.NopLogger{}
	}
	if inst == nil {
		inst, _ = observe.NewInstruments(nil, nil)
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Manager{
		config: config,
		http:   client,
		log:    logger,
		inst:   inst,
		token:  token,
	}
}

// Token returns the currently held token.
func (m *Manager) Token() *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Valid reports whether the held token is usable.
func (m *Manager) Valid() bool {
	return m.Token().Valid()
}

// RefreshNeeded reports whether the held token is expired or expires
// within the refresh threshold.
func (m *Manager) RefreshNeeded() bool {
	t := m.Token()
	return t.Expired() || t.ExpiresSoon(m.config.RefreshThreshold)
}

// AuthorizationHeader returns the bearer header of the held token.
func (m *Manager) AuthorizationHeader() string {
	return m.Token().AuthorizationHeader()
}

// Refresh exchanges the refresh credential for a new token and replaces
// the held token. It fails with ErrNoRefreshToken before any network
// call when no refresh credential is present. Concurrent callers share
// one in-flight exchange per realm.
func (m *Manager) Refresh(ctx context.Context) (*Token, error) {
	current := m.Token()
	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	v, err, _ := m.sf.Do(current.RealmID, func() (any, error) {
		// Re-read: a racing caller may have completed the refresh while
		// we waited on the flight group.
		held := m.Token()
		if held != current && held.Valid() {
			return held, nil
		}

		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", held.RefreshToken)

		payload, err := m.tokenCall(ctx, tokenPath, form, ErrRefreshFailed)
		m.inst.RecordRefresh(ctx, err)
		if err != nil {
			m.log.Error(ctx, "token refresh failed",
				observe.String("realm_id", held.RealmID),
				observe.Err(err),
			)
			return nil, err
		}

		fresh := tokenFromPayload(payload, held.RealmID)
		m.replace(fresh)

		m.log.Info(ctx, "token refreshed",
			observe.String("realm_id", held.RealmID),
			observe.String("expires_at", fresh.ExpiresAt.UTC().Format(time.RFC3339)),
		)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Token), nil
}

// Exchange swaps an authorization code for a token and replaces the held
// token.
func (m *Manager) Exchange(ctx context.Context, code, redirectURI, realmID string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	payload, err := m.tokenCall(ctx, tokenPath, form, ErrExchangeFailed)
	if err != nil {
		return nil, err
	}

	fresh := tokenFromPayload(payload, realmID)
	m.replace(fresh)

	m.log.Info(ctx, "authorization code exchanged",
		observe.String("realm_id", realmID),
	)
	return fresh, nil
}

// Revoke invalidates the held refresh credential at the vendor.
func (m *Manager) Revoke(ctx context.Context) error {
	current := m.Token()
	if current == nil || current.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("token", current.RefreshToken)

	if _, err := m.tokenCall(ctx, revokePath, form, ErrRevokeFailed); err != nil {
		return err
	}

	m.log.Info(ctx, "token revoked",
		observe.String("realm_id", current.RealmID),
	)
	return nil
}

func (m *Manager) replace(t *Token) {
	m.mu.Lock()
	m.token = t
	m.mu.Unlock()
}

// tokenCall performs a form-encoded POST against the OAuth host with
// client_secret_basic authentication.
func (m *Manager) tokenCall(ctx context.Context, path string, form url.Values, kind error) (map[string]any, error) {
	endpoint := strings.TrimSuffix(m.config.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", kind, err)
	}

	var payload map[string]any
	if len(body) > 0 {
		// A malformed body is tolerated; status decides the outcome.
		_ = json.Unmarshal(body, &payload)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if payload != nil {
			if v, ok := payload["error_description"].(string); ok && v != "" {
				msg = v
			} else if v, ok := payload["error"].(string); ok && v != "" {
				msg = v
			}
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", kind, msg)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// tokenFromPayload builds a Token from a token endpoint response body.
func tokenFromPayload(payload map[string]any, realmID string) *Token {
	data := TokenData{}
	if v, ok := payload["access_token"].(string); ok {
		data.AccessToken = v
	}
	if v, ok := payload["refresh_token"].(string); ok {
		data.RefreshToken = v
	}
	if v, ok := payload["id_token"].(string); ok {
		data.IDToken = v
	}
	if v, ok := payload["token_type"].(string); ok {
		data.TokenType = v
	}
	if v, ok := payload["expires_in"].(float64); ok {
		data.ExpiresIn = int64(v)
	}
	return NewToken(data, realmID)
}
