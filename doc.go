// Package qbclient is an OAuth2 client for the QuickBooks Online
// accounting API.
//
// The client owns the token lifecycle, request construction, resilient
// HTTP dispatch, and response classification, so callers work with
// entities and queries instead of raw HTTP.
//
// # Usage
//
//	cfg := qbclient.Config{
//	    ClientID:     os.Getenv("QB_CLIENT_ID"),
//	    ClientSecret: os.Getenv("QB_CLIENT_SECRET"),
//	    Environment:  qbclient.EnvironmentSandbox,
//	}
//	token := &oauth.Token{
//	    AccessToken:  "...",
//	    RefreshToken: "...",
//	    RealmID:      "1234567890",
//	}
//	client, err := qbclient.New(cfg, token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get(ctx, "customer/42", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors carry a stable taxonomy, so callers branch with errors.Is:
//
//	if errors.Is(err, api.ErrRateLimit) {
//	    // back off and try again later
//	}
//
// Dispatch runs through a per-realm connection pool, a circuit breaker,
// and a bounded retry loop. All of these are configurable through
// Config and the With* options; the defaults are safe for production
// use.
package qbclient
