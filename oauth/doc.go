// Package oauth manages the OAuth2 token lifecycle for QuickBooks API
// access.
//
// A Token is an immutable value: validity is derived from its fields and
// refresh replaces the held token wholesale, never mutating it in place.
// Manager owns exactly one Token at a time and is the only path from an
// expired token back to a valid one. Concurrent refreshes for the same
// realm coalesce into a single exchange via singleflight, so callers
// racing on an expired token share one network call and one replacement
// token.
package oauth
