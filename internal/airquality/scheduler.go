package airquality

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LocationProvider produces a fresh monitored-location set on demand.
type LocationProvider interface {
	// Name identifies the provider in snapshots and logs.
	Name() string

	// FetchLocations returns the current monitored-location set.
	FetchLocations(ctx context.Context) ([]MonitoredLocation, error)
}

// DefaultRefreshInterval is the countdown between automatic refreshes.
const DefaultRefreshInterval = 300 * time.Second

// SchedulerConfig holds configuration for the refresh scheduler.
type SchedulerConfig struct {
	// Provider supplies the monitored-location set (required).
	Provider LocationProvider

	// Interval is the auto-refresh period. Default: 300s.
	Interval time.Duration

	// TickInterval is how much wall time one countdown second takes.
	// Default: 1s. Tests shrink it.
	TickInterval time.Duration

	// FetchTimeout bounds a single provider fetch. Default: 30s.
	FetchTimeout time.Duration

	// BeforeManual, when set, runs at the start of every TriggerNow
	// call. The API server uses it to drop the weather cache so a
	// manual refresh reads fresh weather too.
	BeforeManual func()

	// Logger for scheduler operations.
	Logger zerolog.Logger
}

// Scheduler keeps the monitored-location snapshot fresh and exposes a
// countdown to the next automatic refresh.
//
// It is a three-state machine: idle (countdown ticking), refreshing (fetch
// in flight), disabled (auto-refresh off). The countdown decrements once
// per second only while idle and resets to the full interval after every
// refresh, successful or not. A fetch failure substitutes the fixed
// fallback set so estimation always has non-empty input; the failure is
// surfaced on the refresh state, never returned as a fatal error.
//
// The scheduler owns its lifecycle: Start launches the countdown loop,
// Stop tears it down, TriggerNow forces a refresh from any state. An
// explicit in-flight guard makes overlapping triggers no-ops.
type Scheduler struct {
	provider     LocationProvider
	estimator    *Estimator
	logger       zerolog.Logger
	metrics      *domainMetrics
	tickInterval time.Duration
	fetchTimeout time.Duration
	beforeManual func()
	full         int

	mu          sync.Mutex
	countdown   int
	auto        bool
	inFlight    bool
	started     bool
	snapshot    Snapshot
	hasSnapshot bool
	lastErr     error
	refreshes   uint64
	failures    uint64

	stopOnce sync.Once
	stopC    chan struct{}
	doneC    chan struct{}
}

// NewScheduler creates a Scheduler with auto-refresh enabled and the
// countdown primed at the full interval. Nothing runs until Start.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	full := int(cfg.Interval / time.Second)
	if full <= 0 {
		full = 1
	}

	return &Scheduler{
		provider:     cfg.Provider,
		estimator:    NewEstimator(),
		logger:       cfg.Logger,
		metrics:      newDomainMetrics(),
		tickInterval: cfg.TickInterval,
		fetchTimeout: cfg.FetchTimeout,
		beforeManual: cfg.BeforeManual,
		full:         full,
		countdown:    full,
		auto:         true,
		stopC:        make(chan struct{}),
		doneC:        make(chan struct{}),
	}
}

// Start performs an initial fetch so consumers have a snapshot immediately,
// then launches the countdown loop. The loop runs until Stop is called or
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial refresh skipped")
	}
	go s.run(ctx)
}

// Stop halts the countdown loop and waits for it to exit, so no callback
// mutates state after teardown. Safe to call more than once; a no-op if
// Start was never called.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	s.stopOnce.Do(func() { close(s.stopC) })
	<-s.doneC
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneC)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopC:
			return
		case <-ticker.C:
			if s.tick() {
				// Ticker ticks dropped while the fetch runs keep the
				// countdown frozen during the refreshing state.
				if err := s.refresh(ctx); err != nil {
					s.logger.Debug().Err(err).Msg("scheduled refresh skipped")
				}
			}
		}
	}
}

// tick advances the countdown by one second and reports whether it expired.
// The countdown only moves while idle: not while auto-refresh is off and
// not while a fetch is in flight.
func (s *Scheduler) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.auto || s.inFlight {
		return false
	}
	if s.countdown > 0 {
		s.countdown--
	}
	return s.countdown == 0
}

// TriggerNow runs a refresh immediately, regardless of the countdown or the
// auto-refresh toggle, and blocks until the fetch completes. A refresh
// already in flight is not superseded: the call is a no-op returning
// ErrRefreshInFlight. The toggle is left untouched, so a disabled scheduler
// is disabled again afterwards.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	if s.beforeManual != nil {
		s.beforeManual()
	}
	return s.refresh(ctx)
}

// SetAutoRefresh flips the auto-refresh toggle. Disabling freezes the
// countdown; re-enabling resets it to the full interval rather than
// resuming the frozen value.
func (s *Scheduler) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auto == enabled {
		return
	}
	s.auto = enabled
	if enabled {
		s.countdown = s.full
	}
}

// refresh performs one fetch cycle under the in-flight guard.
func (s *Scheduler) refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRefreshInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	locations, err := s.provider.FetchLocations(fetchCtx)
	cancel()

	if err == nil && len(locations) == 0 {
		err = ErrEmptyLocationSet
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	s.countdown = s.full
	s.refreshes++

	s.metrics.recordRefresh(ctx, now.Sub(start), err != nil)

	if err != nil {
		s.failures++
		s.lastErr = err
		s.snapshot = Snapshot{
			Locations: FallbackLocations(),
			FetchedAt: now,
			Fallback:  true,
			Provider:  s.provider.Name(),
		}
		s.hasSnapshot = true
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Dur("duration", now.Sub(start)).
			Msg("location refresh failed, fallback set substituted")
		return nil
	}

	s.lastErr = nil
	s.snapshot = Snapshot{
		Locations: locations,
		FetchedAt: now,
		Provider:  s.provider.Name(),
	}
	s.hasSnapshot = true
	s.logger.Info().
		Int("locations", len(locations)).
		Str("provider", s.provider.Name()).
		Dur("duration", now.Sub(start)).
		Msg("monitored locations refreshed")
	return nil
}

// Snapshot returns a copy of the most recent monitored-location snapshot.
// The boolean is false until the first refresh completes.
func (s *Scheduler) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasSnapshot {
		return Snapshot{}, false
	}
	return s.snapshot.Clone(), true
}

// State reports the externally visible refresh state.
func (s *Scheduler) State() RefreshState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := RefreshState{
		LastUpdated:        s.snapshot.FetchedAt,
		CountdownSeconds:   s.countdown,
		AutoRefreshEnabled: s.auto,
		Refreshing:         s.inFlight,
		UsingFallback:      s.hasSnapshot && s.snapshot.Fallback,
	}
	switch {
	case s.inFlight:
		st.State = StateRefreshing
	case !s.auto:
		st.State = StateDisabled
	default:
		st.State = StateIdle
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Estimate runs the spatial estimator against the current snapshot.
func (s *Scheduler) Estimate(point QueryPoint) (EstimatedReading, error) {
	snap, ok := s.Snapshot()
	if !ok {
		return EstimatedReading{}, ErrEmptyLocationSet
	}
	return s.estimator.Estimate(point, snap.Locations)
}

// Stats reports lifetime refresh counters.
func (s *Scheduler) Stats() (refreshes, failures uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes, s.failures
}
