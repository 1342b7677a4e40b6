package oauth

import "errors"

// Sentinel errors for token lifecycle failures.
var (
	// ErrTokenExpired is returned when a call is attempted with an
	// expired token and no way to refresh it.
	ErrTokenExpired = errors.New("oauth: access token expired")

	// ErrNoRefreshToken is returned when a refresh is requested but the
	// held token carries no refresh credential. This state is terminal:
	// there is no path back to validity without re-authorizing.
	ErrNoRefreshToken = errors.New("oauth: no refresh token available")

	// ErrRefreshFailed is returned when the token endpoint rejected a
	// refresh exchange.
	ErrRefreshFailed = errors.New("oauth: token refresh failed")

	// ErrExchangeFailed is returned when the authorization-code exchange
	// was rejected.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrRevokeFailed is returned when token revocation was rejected.
	ErrRevokeFailed = errors.New("oauth: token revocation failed")

	// ErrInvalidToken is returned when a token is structurally unusable,
	// e.g. an id_token that does not parse.
	ErrInvalidToken = errors.New("oauth: invalid token")
)
