package qbclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonwraymond/qbclient/api"
	"github.com/jonwraymond/qbclient/oauth"
	"github.com/jonwraymond/qbclient/observe"
	"github.com/jonwraymond/qbclient/resilience"
	"github.com/jonwraymond/qbclient/transport"
)

// Client orchestrates one realm's API access: token validity, request
// construction, resilient execution, and response classification.
type Client struct {
	config   Config
	manager  *oauth.Manager
	builder  *transport.Builder
	executor *transport.Executor
	handler  *api.Handler
	pool     *resilience.Pool
	breaker  *resilience.CircuitBreaker
	limiter  *resilience.RateLimiter
	timeout  *resilience.Timeout
	log      observe.Logger
	inst     *observe.Instruments
}

// New creates a Client for the realm the token is scoped to.
func New(cfg Config, token *oauth.Token, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if token == nil || token.RealmID == "" {
		return nil, fmt.Errorf("%w: a token with a realm id is required", ErrConfiguration)
	}

	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	inst, err := observe.NewInstruments(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	manager := oauth.NewManager(oauth.ManagerConfig{
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		BaseURL:          cfg.OAuthBaseURL,
		RefreshThreshold: cfg.RefreshThreshold,
		Timeout:          cfg.ReadTimeout,
	}, token, o.logger, inst)

	builder := transport.NewBuilder(transport.BuilderConfig{
		BaseURL:     cfg.apiBaseURL(),
		RealmID:     token.RealmID,
		Environment: string(cfg.Environment),
		UserAgent:   "qbclient-go/" + Version,
	}, manager)

	executor := transport.NewExecutor(transport.ExecutorConfig{
		ConnectTimeout:     cfg.ConnectTimeout,
		ReadTimeout:        cfg.ReadTimeout,
		RetryCount:         cfg.RetryCount,
		RetryBaseDelay:     cfg.RetryBaseDelay,
		RetryMaxDelay:      cfg.RetryMaxDelay,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, o.logger, inst)

	c := &Client{
		config:   cfg,
		manager:  manager,
		builder:  builder,
		executor: executor,
		handler:  api.NewHandler(o.logger),
		pool: resilience.NewPool(resilience.PoolConfig{
			Size:            cfg.PoolSize,
			CheckoutTimeout: cfg.PoolTimeout,
		}),
		limiter: o.limiter,
		log:     o.logger,
		inst:    inst,
	}

	if o.breaker != nil {
		c.breaker = o.breaker
	} else {
		c.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.State) {
				ctx := context.Background()
				inst.RecordBreakerTransition(ctx, from.String(), to.String())
				o.logger.Warn(ctx, "circuit breaker state changed",
					observe.String("from", from.String()),
					observe.String("to", to.String()),
				)
			},
			// HTTP-level errors are typed results, not breaker
			// failures; only transport and availability faults count.
			IsFailure: func(err error) bool {
				if err == nil {
					return false
				}
				return errors.Is(err, transport.ErrNetwork) ||
					errors.Is(err, transport.ErrConnection) ||
					errors.Is(err, api.ErrServiceUnavailable)
			},
		})
	}

	if o.callTimeout > 0 {
		c.timeout = resilience.NewTimeout(resilience.TimeoutConfig{Timeout: o.callTimeout})
	}

	return c, nil
}

// Manager exposes the token manager, e.g. for explicit refresh or
// revocation.
func (c *Client) Manager() *oauth.Manager {
	return c.manager
}

// RealmID returns the realm this client is scoped to.
func (c *Client) RealmID() string {
	return c.manager.Token().RealmID
}

// Do issues one API call. The token is validated (and refreshed when
// needed) before dispatch; rate-limited responses are re-issued after
// sleeping out the vendor's cool-down while the retry budget lasts. All
// other errors propagate unchanged.
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values, body any) (*api.SuccessResponse, error) {
	if c.timeout == nil {
		return c.doWithRateLimitRetry(ctx, method, endpoint, query, body)
	}

	var sr *api.SuccessResponse
	err := c.timeout.Execute(ctx, func(ctx context.Context) error {
		var err error
		sr, err = c.doWithRateLimitRetry(ctx, method, endpoint, query, body)
		return err
	})
	return sr, err
}

const defaultRateLimitCooldown = time.Second

func (c *Client) doWithRateLimitRetry(ctx context.Context, method, endpoint string, query url.Values, body any) (*api.SuccessResponse, error) {
	budget := c.config.RateLimitRetries

	for {
		sr, err := c.doOnce(ctx, method, endpoint, query, body)
		if err == nil || !errors.Is(err, api.ErrRateLimit) || budget <= 0 {
			return sr, err
		}
		budget--

		wait := defaultRateLimitCooldown
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}

		c.log.Warn(ctx, "rate limited, retrying after cool-down",
			observe.String("endpoint", endpoint),
			observe.Duration("retry_after", wait),
			observe.Int("budget_left", budget),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, query url.Values, body any) (*api.SuccessResponse, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	req, err := c.builder.Build(method, endpoint, query, body, nil, c.config.MinorVersion)
	if err != nil {
		return nil, err
	}

	realm := req.Meta.RealmID
	ctx, span := c.inst.StartRequest(ctx, method, endpoint, realm)

	// Classification runs inside the breaker so service-unavailable
	// errors count against it alongside transport failures.
	var resp *transport.Response
	var sr *api.SuccessResponse
	execute := func(ctx context.Context) error {
		var execErr error
		resp, execErr = c.executor.Execute(ctx, req)
		if execErr != nil {
			return execErr
		}
		sr, execErr = c.handler.Handle(ctx, resp, req)
		return execErr
	}

	dispatch := func() error {
		return c.breaker.Execute(ctx, execute)
	}

	if c.limiter != nil {
		inner := dispatch
		dispatch = func() error {
			return c.limiter.Execute(ctx, func(ctx context.Context) error {
				return inner()
			})
		}
	}

	err = c.pool.With(ctx, realm, dispatch)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.inst.EndRequest(span, status, err)

	if err != nil {
		return nil, err
	}
	return sr, nil
}

// ensureToken refreshes the held token ahead of dispatch when it is
// expired or about to expire. A refresh failure is fatal only if the
// token is actually unusable.
func (c *Client) ensureToken(ctx context.Context) error {
	if !c.manager.RefreshNeeded() {
		return nil
	}

	if c.config.DisableAutoRefresh {
		if c.manager.Valid() {
			return nil
		}
		return oauth.ErrTokenExpired
	}

	if _, err := c.manager.Refresh(ctx); err != nil {
		if c.manager.Valid() {
			// Still inside the expiry window; use the current token and
			// let the next call try again.
			c.log.Warn(ctx, "token refresh failed, using current token",
				observe.Err(err),
			)
			return nil
		}
		return err
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*api.SuccessResponse, error) {
	return c.Do(ctx, "GET", endpoint, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*api.SuccessResponse, error) {
	return c.Do(ctx, "POST", endpoint, nil, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*api.SuccessResponse, error) {
	return c.Do(ctx, "PUT", endpoint, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, query url.Values) (*api.SuccessResponse, error) {
	return c.Do(ctx, "DELETE", endpoint, query, nil)
}

// Ping verifies connectivity and credentials with a cheap company info
// fetch.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "companyinfo/"+c.RealmID(), nil)
	return err
}

// BreakerState reports the circuit breaker's current state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}
