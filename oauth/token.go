package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Token holds the OAuth2 credentials for one realm. Tokens are
// value-like: they are constructed once and replaced wholesale on
// refresh, never mutated.
type Token struct {
	AccessToken  string
	RefreshToken string
	RealmID      string
	// ExpiresAt is the access token expiry; the zero value means the
	// token never expires.
	ExpiresAt time.Time
	IDToken   string
	TokenType string
}

// TokenData carries the raw fields a token is constructed from. Exactly
// one expiry representation is honored, first match wins: ExpiresAt,
// then ExpiresAtString (RFC3339), then ExpiresIn seconds.
type TokenData struct {
	AccessToken     string
	RefreshToken    string
	IDToken         string
	TokenType       string
	ExpiresAt       time.Time
	ExpiresAtString string
	ExpiresIn       int64
}

// NewToken constructs a token for the realm from raw exchange data.
func NewToken(data TokenData, realmID string) *Token {
	t := &Token{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		RealmID:      realmID,
		IDToken:      data.IDToken,
		TokenType:    data.TokenType,
	}

	switch {
	case !data.ExpiresAt.IsZero():
		t.ExpiresAt = data.ExpiresAt
	case data.ExpiresAtString != "":
		if at, err := time.Parse(time.RFC3339, data.ExpiresAtString); err == nil {
			t.ExpiresAt = at
		}
	case data.ExpiresIn > 0:
		t.ExpiresAt = time.Now().Add(time.Duration(data.ExpiresIn) * time.Second)
	}

	return t
}

// Valid reports whether the token is usable: a non-empty access
// credential that has not expired.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || time.Now().Before(t.ExpiresAt)
}

// Expired is the negation of Valid.
func (t *Token) Expired() bool {
	return !t.Valid()
}

// ExpiresSoon reports whether the token expires within the threshold.
// Tokens without an expiry never expire soon.
func (t *Token) ExpiresSoon(threshold time.Duration) bool {
	if t == nil || t.ExpiresAt.IsZero() {
		return false
	}
	return !time.Now().Add(threshold).Before(t.ExpiresAt)
}

// AuthorizationHeader returns the bearer header value for this token.
func (t *Token) AuthorizationHeader() string {
	if t == nil {
		return ""
	}
	return "Bearer " + t.AccessToken
}

// Diagnostic returns a map safe for logging. Raw credentials are never
// included; the access token is represented by a short fingerprint.
func (t *Token) Diagnostic() map[string]any {
	if t == nil {
		return map[string]any{"valid": false}
	}

	d := map[string]any{
		"valid":             t.Valid(),
		"expired":           t.Expired(),
		"realm_id":          t.RealmID,
		"has_refresh_token": t.RefreshToken != "",
		"fingerprint":       fingerprint(t.AccessToken),
	}
	if !t.ExpiresAt.IsZero() {
		d["expires_at"] = t.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return d
}

// fingerprint returns a short stable identifier for a credential.
func fingerprint(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}
