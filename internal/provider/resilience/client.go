package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's circuit breaker rejects the
// call before any request is sent.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream provider in breaker state and logs.
	Name string

	// Timeout bounds a single HTTP attempt. Default: 4 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2.
	MaxRetries uint64

	// InitialInterval is the first retry backoff delay. Default: 250ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff delay. Default: 2 seconds.
	MaxInterval time.Duration

	// Breaker overrides the circuit breaker configuration.
	// If nil, DefaultBreakerConfig is used.
	Breaker *BreakerConfig
}

// DefaultClientConfig returns defaults tuned so the whole retry chain
// finishes inside the API server's 15 second write timeout. A conditions
// request that misses the cache fetches upstream synchronously.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         4 * time.Second,
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Breaker:         &breaker,
	}
}

// Client wraps http.Client with a circuit breaker and exponential retry for
// calls to an upstream pollution or weather provider.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient HTTP client for one upstream provider.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 4 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 250 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		def := DefaultBreakerConfig(cfg.Name)
		breakerCfg = &def
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](*breakerCfg), //nolint:bodyclose // type param, not a response
		config:     cfg,
	}
}

// Do executes the request through the circuit breaker, retrying transient
// failures with exponential backoff. Rate limiting (429) and server errors
// (5xx) count against the breaker and are retried; other statuses return to
// the caller untouched. When retries are exhausted the last response is
// returned so callers can inspect the status. An open breaker fails fast
// with ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retry count is the only limit

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	// Failed responses are closed before being replaced so retries do not
	// leak connections.
	keep := func(resp *http.Response) {
		if lastResp != nil && lastResp != resp {
			lastResp.Body.Close()
		}
		lastResp = resp
	}

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if retryable(r.StatusCode) {
				return r, &UpstreamError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				keep(resp)
			}
			return err
		}
		keep(resp)
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// UpstreamError marks a response whose status counts against the breaker.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the circuit breaker's rolling counts.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
