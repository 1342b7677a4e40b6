// Package resilience provides the failure-handling primitives that guard
// QuickBooks API calls.
//
// This package implements common resilience patterns that the client
// composes around network operations:
//
//   - Circuit Breaker: Stops dispatching requests to a failing API host
//     after a threshold of consecutive failures, probing for recovery
//     through a half-open state.
//
//   - Retry: Automatically retries failed operations with configurable
//     backoff strategies (exponential, linear, constant).
//
//   - Connection Pool: Bounds the number of in-flight logical connections
//     per realm, blocking checkout until a slot frees or a wait deadline
//     expires.
//
//   - Rate Limiter: Controls the request rate to stay under vendor
//     throttling limits.
//
//   - Timeout: Ensures a whole call completes within a time limit.
//
// # Usage
//
// Each pattern can be used independently or composed:
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: time.Minute,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: 100 * time.Millisecond,
//	    MaxDelay:     5 * time.Second,
//	})
//
//	pool := resilience.NewPool(resilience.PoolConfig{
//	    Size:            5,
//	    CheckoutTimeout: 10 * time.Second,
//	})
//
//	err := pool.With(ctx, realmID, func() error {
//	    return cb.Execute(ctx, func(ctx context.Context) error {
//	        return retry.Execute(ctx, callAPI)
//	    })
//	})
package resilience
