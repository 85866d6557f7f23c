// Package advisory derives health alerts, recommendations and the pollution
// hotspot map from the city's current readings.
package advisory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/airquality/gurugram"
	"github.com/airwise/airwise/internal/weather"
)

// ErrNoSnapshot is returned when no location snapshot has been taken yet.
var ErrNoSnapshot = errors.New("advisory: no location snapshot available")

// ConditionsSource supplies the current city-level conditions.
type ConditionsSource interface {
	Current(ctx context.Context) *airquality.Conditions
}

// SnapshotSource supplies the latest per-area location snapshot.
type SnapshotSource interface {
	Snapshot() (airquality.Snapshot, bool)
}

// WeatherSource supplies the city weather observation for the hotspot map.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// ServiceConfig configures an advisory Service.
type ServiceConfig struct {
	// Conditions supplies the city AQI (required).
	Conditions ConditionsSource

	// Snapshots supplies the per-area locations for the hotspot map
	// (required).
	Snapshots SnapshotSource

	// Weather supplies the observation behind the hotspot weather panel
	// (required).
	Weather WeatherSource

	// Lat and Lon locate the weather observation. Default: the city centre.
	Lat float64
	Lon float64

	Logger zerolog.Logger

	// Now is the clock, injectable for tests. Default: time.Now.
	Now func() time.Time
}

// Service answers the advisory queries for the dashboard.
type Service struct {
	conditions ConditionsSource
	snapshots  SnapshotSource
	weather    WeatherSource
	lat        float64
	lon        float64
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates an advisory Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Lat == 0 && cfg.Lon == 0 {
		cfg.Lat, cfg.Lon = gurugram.CityLat, gurugram.CityLon
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		conditions: cfg.Conditions,
		snapshots:  cfg.Snapshots,
		weather:    cfg.Weather,
		lat:        cfg.Lat,
		lon:        cfg.Lon,
		logger:     cfg.Logger.With().Str("component", "advisory").Logger(),
		now:        cfg.Now,
	}
}

// Alerts returns the active alerts for the current city AQI. When only the
// fallback reading is available the fixed advisory pair is served instead.
func (s *Service) Alerts(ctx context.Context) []Alert {
	cond := s.conditions.Current(ctx)
	if cond.Fallback {
		return FallbackAlerts(s.now())
	}
	return BuildAlerts(cond.AQI, s.now())
}

// Recommendations returns the health guidance for the current city AQI.
func (s *Service) Recommendations(ctx context.Context) []string {
	cond := s.conditions.Current(ctx)
	if cond.Fallback {
		return FallbackRecommendations()
	}
	return Recommendations(cond.AQI)
}

// Hotspots builds the graded hotspot map from the latest location snapshot.
// The weather panel degrades to a fixed profile when the observation cannot
// be fetched.
func (s *Service) Hotspots(ctx context.Context) (*HotspotMap, error) {
	snap, ok := s.snapshots.Snapshot()
	if !ok || len(snap.Locations) == 0 {
		return nil, ErrNoSnapshot
	}

	influence := FallbackInfluence()
	if obs, err := s.weather.GetCurrentWeather(ctx, s.lat, s.lon); err != nil {
		s.logger.Warn().Err(err).Msg("weather unavailable, using fixed influence panel")
	} else {
		influence = InfluenceFrom(obs)
	}

	return BuildHotspotMap(snap.Locations, influence, snap.FetchedAt, s.now()), nil
}
