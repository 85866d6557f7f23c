// Package resilience wraps outbound provider calls with circuit breakers,
// bounded retries, and a health registry that the readiness probe reports
// from.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds circuit breaker tuning for one upstream provider.
type BreakerConfig struct {
	// Name identifies the breaker in state change notifications.
	Name string

	// MaxRequests is how many probe requests may pass while half-open.
	// Default: 1.
	MaxRequests uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	// Default: 45 seconds, so a recovered provider is picked up well within
	// one 300 second refresh cycle.
	OpenTimeout time.Duration

	// MinRequests is how many requests must be observed before the failure
	// ratio can trip the breaker. Default: 5.
	MinRequests uint32

	// FailureRatio is the failure fraction that trips the breaker once
	// MinRequests is reached. Default: 0.5.
	FailureRatio float64

	// OnStateChange is called on every breaker transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns breaker defaults for an upstream provider.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		OpenTimeout:  45 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.5,
	}
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 45 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = 0.5
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureRatio
		},
		OnStateChange: cfg.OnStateChange,
	})
}
