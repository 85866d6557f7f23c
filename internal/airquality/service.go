package airquality

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Concentrations are pollutant concentrations as reported by the source,
// in µg/m³.
type Concentrations struct {
	PM25 float64
	PM10 float64
	O3   float64
	NO2  float64
	SO2  float64
	CO   float64
}

// WeatherSummary is the slice of weather displayed beside the AQI.
type WeatherSummary struct {
	Temperature   float64
	Humidity      float64
	WindSpeed     float64
	WindDirection string // 16-point compass name
}

// Conditions is the city-level current air quality reading.
type Conditions struct {
	AQI        int
	Category   Category
	Location   string
	ObservedAt time.Time
	FetchedAt  time.Time
	Pollutants Concentrations
	Weather    WeatherSummary

	// Fallback is true when the fixed profile was substituted because the
	// provider could not be reached and nothing cached was usable.
	Fallback bool
}

// PollutionSample is one timestamped upstream sample.
type PollutionSample struct {
	At         time.Time
	Index      int // raw source quality index, 1..5
	Components Concentrations
}

// ConditionsProvider supplies city-level readings and outlook series.
type ConditionsProvider interface {
	// Name identifies the data source.
	Name() string

	// FetchConditions returns the current city-level reading.
	FetchConditions(ctx context.Context) (*Conditions, error)

	// FetchForecast returns hourly forecast samples, typically ~4 days.
	FetchForecast(ctx context.Context) ([]PollutionSample, error)

	// FetchHistory returns hourly samples between start and end.
	FetchHistory(ctx context.Context, start, end time.Time) ([]PollutionSample, error)
}

// ServiceConfig holds configuration for the conditions service.
type ServiceConfig struct {
	// Provider is the city-level data provider.
	Provider ConditionsProvider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long current conditions stay fresh (default: 5 minutes).
	CacheTTL time.Duration

	// OutlookCacheTTL is how long forecast and trend series stay fresh
	// (default: 30 minutes).
	OutlookCacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors
	// (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service serves current conditions and outlook series with caching.
// A provider outage degrades to stale data first and to the fixed fallback
// profiles last; it never surfaces as a request failure.
type Service struct {
	provider        ConditionsProvider
	logger          zerolog.Logger
	metrics         *domainMetrics
	cacheTTL        time.Duration
	outlookTTL      time.Duration
	staleIfErrorTTL time.Duration

	mu             sync.RWMutex
	current        *Conditions
	currentExpiry  time.Time
	forecast       *Forecast
	forecastExpiry time.Time
	trend          *Trend
	trendExpiry    time.Time
}

// NewService creates a new conditions service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	outlookTTL := cfg.OutlookCacheTTL
	if outlookTTL == 0 {
		outlookTTL = 30 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		metrics:         newDomainMetrics(),
		cacheTTL:        cacheTTL,
		outlookTTL:      outlookTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// Current returns the city-level current conditions. It serves a cached
// reading while fresh, otherwise refreshes through the provider.
func (s *Service) Current(ctx context.Context) *Conditions {
	s.mu.RLock()
	if s.current != nil && time.Now().Before(s.currentExpiry) {
		c := s.current
		s.mu.RUnlock()
		s.metrics.recordCacheHit(ctx)
		return c
	}
	s.mu.RUnlock()

	return s.refreshCurrent(ctx)
}

// refreshCurrent fetches fresh conditions from the provider.
func (s *Service) refreshCurrent(ctx context.Context) *Conditions {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check: another goroutine might have refreshed while we waited
	if s.current != nil && time.Now().Before(s.currentExpiry) {
		s.metrics.recordCacheHit(ctx)
		return s.current
	}
	s.metrics.recordCacheMiss(ctx)

	cond, err := s.provider.FetchConditions(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch current conditions")

		// Serve stale data that is not too old
		if s.current != nil && time.Now().Before(s.current.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.metrics.recordStaleServed(ctx)
			s.logger.Warn().
				Time("fetched_at", s.current.FetchedAt).
				Msg("serving stale conditions due to provider error")
			return s.current
		}

		// The fallback profile is never cached, so the next request retries
		// the provider.
		return FallbackConditions(time.Now())
	}

	s.current = cond
	s.currentExpiry = time.Now().Add(s.cacheTTL)

	s.logger.Info().
		Int("aqi", cond.AQI).
		Str("category", string(cond.Category)).
		Time("expires_at", s.currentExpiry).
		Msg("current conditions refreshed")

	return cond
}

// InvalidateCache clears every cached series.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.currentExpiry = time.Time{}
	s.forecast = nil
	s.forecastExpiry = time.Time{}
	s.trend = nil
	s.trendExpiry = time.Time{}
}

// CacheStatus reports the current conditions cache state.
func (s *Service) CacheStatus() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return CacheStatus{HasData: false}
	}

	now := time.Now()
	return CacheStatus{
		HasData:   true,
		FetchedAt: s.current.FetchedAt,
		ExpiresAt: s.currentExpiry,
		IsExpired: now.After(s.currentExpiry),
		IsStale:   now.After(s.current.FetchedAt.Add(s.staleIfErrorTTL)),
		Fallback:  s.current.Fallback,
		Provider:  s.provider.Name(),
	}
}

// CacheStatus represents the current state of the conditions cache.
type CacheStatus struct {
	HasData   bool
	FetchedAt time.Time
	ExpiresAt time.Time
	IsExpired bool
	IsStale   bool
	Fallback  bool
	Provider  string
}

// FallbackConditions is the fixed city reading served when the provider
// cannot be reached and nothing cached is usable.
func FallbackConditions(now time.Time) *Conditions {
	return &Conditions{
		AQI:        165,
		Category:   CategoryFor(165),
		Location:   "Gurugram",
		ObservedAt: now,
		FetchedAt:  now,
		Pollutants: Concentrations{PM25: 82, PM10: 145, O3: 48, NO2: 35, SO2: 15, CO: 0.8},
		Weather:    WeatherSummary{Temperature: 32, Humidity: 65, WindSpeed: 8, WindDirection: "NE"},
		Fallback:   true,
	}
}
