package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider fetches current weather from an upstream source.
type Provider interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)

	// Name identifies the provider in logs.
	Name() string
}

// ServiceConfig configures the caching weather service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// FreshFor bounds how long an observation is served without a
	// refetch. Weather moves slowly next to the 300 second air quality
	// cycle, so the default is 10 minutes.
	FreshFor time.Duration

	// UsableFor bounds how long a stale observation may stand in when
	// the provider is down. Default 1 hour.
	UsableFor time.Duration
}

// Service caches observations per spot so every subsystem asking about
// the same place shares one provider call per freshness window.
type Service struct {
	provider  Provider
	log       zerolog.Logger
	freshFor  time.Duration
	usableFor time.Duration

	mu    sync.Mutex
	spots map[string]*spot
}

// spot is the cache slot for one rounded coordinate. Its mutex is held
// across the provider call, which keeps concurrent callers for the same
// place down to a single upstream fetch without stalling other spots.
type spot struct {
	mu        sync.Mutex
	obs       *Observation
	fetchedAt time.Time
}

// NewService creates a weather service around the given provider.
func NewService(cfg ServiceConfig) *Service {
	freshFor := cfg.FreshFor
	if freshFor == 0 {
		freshFor = 10 * time.Minute
	}
	usableFor := cfg.UsableFor
	if usableFor == 0 {
		usableFor = time.Hour
	}

	return &Service{
		provider:  cfg.Provider,
		log:       cfg.Logger,
		freshFor:  freshFor,
		usableFor: usableFor,
		spots:     make(map[string]*spot),
	}
}

// GetCurrentWeather returns the weather at a coordinate, served from
// cache while fresh. When the provider fails, the previous observation
// stands in until it ages past the usable window.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	sp := s.spot(lat, lon)
	sp.mu.Lock()
	defer sp.mu.Unlock()

	now := time.Now()
	if sp.obs != nil && now.Sub(sp.fetchedAt) < s.freshFor {
		return sp.obs, nil
	}

	obs, err := s.provider.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		if sp.obs != nil && now.Sub(sp.fetchedAt) < s.usableFor {
			s.log.Warn().Err(err).
				Str("provider", s.provider.Name()).
				Time("fetched_at", sp.fetchedAt).
				Msg("weather provider failed, serving previous observation")
			return sp.obs, nil
		}
		s.log.Error().Err(err).
			Str("provider", s.provider.Name()).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("weather unavailable")
		return nil, ErrProviderUnavailable
	}

	sp.obs = obs
	sp.fetchedAt = now
	return obs, nil
}

// spot returns the cache slot for a coordinate. Rounding to two
// decimals (about a kilometre) keeps jittered queries for the same
// place on one slot. The map stays tiny, the service only ever sees
// the handful of points the city model asks about.
func (s *Service) spot(lat, lon float64) *spot {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sp, ok := s.spots[key]; ok {
		return sp
	}
	sp := &spot{}
	s.spots[key] = sp
	return sp
}

// Forget drops every cached observation, forcing the next call per
// spot back to the provider.
func (s *Service) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spots = make(map[string]*spot)
}
