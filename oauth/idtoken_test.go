package oauth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestIDTokenClaims(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"realm": "realm-1",
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}

	tok := &Token{AccessToken: "tok", IDToken: raw}

	claims, err := tok.IDTokenClaims()
	if err != nil {
		t.Fatalf("IDTokenClaims() error = %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Errorf("sub = %v, want user-1", claims["sub"])
	}
}

func TestIDTokenClaims_Missing(t *testing.T) {
	tok := &Token{AccessToken: "tok"}

	_, err := tok.IDTokenClaims()
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("IDTokenClaims() error = %v, want ErrInvalidToken", err)
	}
}

func TestIDTokenClaims_Malformed(t *testing.T) {
	tok := &Token{AccessToken: "tok", IDToken: "not-a-jwt"}

	_, err := tok.IDTokenClaims()
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("IDTokenClaims() error = %v, want ErrInvalidToken", err)
	}
}
