package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Level is an ops-facing summary of a provider's health.
type Level int

const (
	// LevelOK means the breaker is closed and requests flow normally.
	LevelOK Level = iota

	// LevelDegraded means the breaker is half-open and probing.
	LevelDegraded

	// LevelFailed means the breaker is open and calls fail fast.
	LevelFailed
)

// ProviderHealth is a point-in-time health report for one provider.
type ProviderHealth struct {
	// Name is the provider identifier.
	Name string

	// CircuitState is the breaker state at report time.
	CircuitState gobreaker.State

	// Counts holds the breaker's rolling request counts.
	Counts gobreaker.Counts

	// LastSuccessAt and LastFailureAt are the most recent outcomes recorded
	// by the provider client. Nil until the first outcome of that kind.
	LastSuccessAt *time.Time
	LastFailureAt *time.Time

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastError is the most recent failure message, cleared on success.
	LastError string
}

// Level maps the breaker state to a health level.
func (h *ProviderHealth) Level() Level {
	switch h.CircuitState {
	case gobreaker.StateOpen:
		return LevelFailed
	case gobreaker.StateHalfOpen:
		return LevelDegraded
	default:
		return LevelOK
	}
}

// Registry tracks provider clients and the outcomes of their recent fetches.
// The readiness endpoint reports from it.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*providerRecord
}

type providerRecord struct {
	client              *Client
	lastSuccessAt       *time.Time
	lastFailureAt       *time.Time
	consecutiveFailures int
	lastError           string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*providerRecord)}
}

// Register adds a provider client under the given name. Registering a name
// again replaces the record and resets its outcome history.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &providerRecord{client: client}
}

// RecordSuccess notes a successful fetch and clears the failure streak.
// Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.providers[name]
	if !ok {
		return
	}
	now := time.Now()
	rec.lastSuccessAt = &now
	rec.consecutiveFailures = 0
	rec.lastError = ""
}

// RecordFailure notes a failed fetch. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.providers[name]
	if !ok {
		return
	}
	now := time.Now()
	rec.lastFailureAt = &now
	rec.consecutiveFailures++
	if err != nil {
		rec.lastError = err.Error()
	}
}

// GetHealth reports one provider's health, or nil for unknown names.
func (r *Registry) GetHealth(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.providers[name]
	if !ok {
		return nil
	}
	return rec.health(name)
}

// GetAllHealth reports every registered provider's health, ordered by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ProviderHealth, 0, len(r.providers))
	for name, rec := range r.providers {
		out = append(out, rec.health(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (rec *providerRecord) health(name string) *ProviderHealth {
	return &ProviderHealth{
		Name:                name,
		CircuitState:        rec.client.BreakerState(),
		Counts:              rec.client.BreakerCounts(),
		LastSuccessAt:       rec.lastSuccessAt,
		LastFailureAt:       rec.lastFailureAt,
		ConsecutiveFailures: rec.consecutiveFailures,
		LastError:           rec.lastError,
	}
}
