package oauth

import (
	"strings"
	"testing"
	"time"
)

func TestToken_Valid(t *testing.T) {
	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{"nil token", nil, false},
		{"empty access token", &Token{}, false},
		{"no expiry never expires", &Token{AccessToken: "tok"}, true},
		{"future expiry", &Token{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, true},
		{"past expiry", &Token{AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
			if got := tt.token.Expired(); got == tt.want {
				t.Errorf("Expired() = %v, want %v", got, !tt.want)
			}
		})
	}
}

func TestToken_ExpiresSoon(t *testing.T) {
	tok := &Token{AccessToken: "tok", ExpiresAt: time.Now().Add(10 * time.Minute)}

	if tok.ExpiresSoon(time.Minute) {
		t.Error("ExpiresSoon(1m) = true for a token valid 10 more minutes")
	}
	if !tok.ExpiresSoon(15 * time.Minute) {
		t.Error("ExpiresSoon(15m) = false for a token expiring in 10 minutes")
	}

	// Monotonic in the threshold: a larger window can only widen the match.
	if tok.ExpiresSoon(11*time.Minute) && !tok.ExpiresSoon(12*time.Minute) {
		t.Error("ExpiresSoon is not monotonic in the threshold")
	}

	never := &Token{AccessToken: "tok"}
	if never.ExpiresSoon(24 * time.Hour) {
		t.Error("ExpiresSoon = true for a token without expiry")
	}
}

func TestNewToken_FirstExpiryRepresentationWins(t *testing.T) {
	absolute := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	// Absolute instant beats the string and relative forms.
	tok := NewToken(TokenData{
		AccessToken:     "tok",
		ExpiresAt:       absolute,
		ExpiresAtString: "2028-06-01T00:00:00Z",
		ExpiresIn:       60,
	}, "realm-1")
	if !tok.ExpiresAt.Equal(absolute) {
		t.Errorf("ExpiresAt = %v, want the absolute instant", tok.ExpiresAt)
	}

	// RFC3339 string beats relative seconds.
	tok = NewToken(TokenData{
		AccessToken:     "tok",
		ExpiresAtString: "2028-06-01T00:00:00Z",
		ExpiresIn:       60,
	}, "realm-1")
	want := time.Date(2028, 6, 1, 0, 0, 0, 0, time.UTC)
	if !tok.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}

	// Relative seconds land close to now + duration.
	tok = NewToken(TokenData{AccessToken: "tok", ExpiresIn: 3600}, "realm-1")
	expected := time.Now().Add(time.Hour)
	if diff := tok.ExpiresAt.Sub(expected); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want about %v", tok.ExpiresAt, expected)
	}

	// No representation at all means no expiry.
	tok = NewToken(TokenData{AccessToken: "tok"}, "realm-1")
	if !tok.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", tok.ExpiresAt)
	}
}

func TestToken_AuthorizationHeader(t *testing.T) {
	tok := &Token{AccessToken: "abc123"}
	if got := tok.AuthorizationHeader(); got != "Bearer abc123" {
		t.Errorf("AuthorizationHeader() = %q, want %q", got, "Bearer abc123")
	}

	var nilTok *Token
	if got := nilTok.AuthorizationHeader(); got != "" {
		t.Errorf("nil AuthorizationHeader() = %q, want empty", got)
	}
}

func TestToken_DiagnosticRedactsCredentials(t *testing.T) {
	tok := &Token{
		AccessToken:  "very-secret-access",
		RefreshToken: "very-secret-refresh",
		RealmID:      "realm-7",
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	d := tok.Diagnostic()

	for k, v := range d {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(s, "very-secret") {
			t.Errorf("Diagnostic()[%q] = %q leaks a raw credential", k, s)
		}
	}

	if d["valid"] != true {
		t.Errorf("valid = %v, want true", d["valid"])
	}
	if d["realm_id"] != "realm-7" {
		t.Errorf("realm_id = %v", d["realm_id"])
	}
	if d["has_refresh_token"] != true {
		t.Errorf("has_refresh_token = %v, want true", d["has_refresh_token"])
	}
	if d["fingerprint"] == "" {
		t.Error("fingerprint is empty")
	}
}
