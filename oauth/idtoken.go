package oauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims extracts the claims of the OpenID Connect id_token that
// accompanies an exchange response. The signature is NOT verified;
// callers that rely on the claims for authorization must verify against
// the vendor's published keys themselves.
func (t *Token) IDTokenClaims() (jwt.MapClaims, error) {
	if t == nil || t.IDToken == "" {
		return nil, fmt.Errorf("%w: no id_token present", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
