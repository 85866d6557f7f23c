// Package worker provides background reading warm jobs for AirWise.
package worker

import (
	"time"

	"github.com/airwise/airwise/internal/airquality/gurugram"
)

// WarmTarget is one monitored area whose reading the warm job fetches.
type WarmTarget struct {
	// Name is the area name as shown on the map.
	Name string

	// Lat and Lon are the area coordinates.
	Lat float64
	Lon float64
}

// WarmConfig holds configuration for the reading warm job.
type WarmConfig struct {
	// Targets are the areas to warm.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Concurrency is the number of concurrent fetches.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for warming a single target.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmPollution enables the per-area pollution fetches.
	// Default: true
	WarmPollution bool

	// WarmWeather enables the city weather fetch.
	// Default: true
	WarmWeather bool
}

// DefaultWarmConfig returns the default warm configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:       DefaultWarmTargets(),
		Concurrency:   3,
		Timeout:       30 * time.Second,
		WarmPollution: true,
		WarmWeather:   true,
	}
}

// DefaultWarmTargets returns one target per monitored Gurugram area.
func DefaultWarmTargets() []WarmTarget {
	areas := gurugram.Areas()
	targets := make([]WarmTarget, 0, len(areas))
	for _, a := range areas {
		targets = append(targets, WarmTarget{Name: a.Name, Lat: a.Lat, Lon: a.Lon})
	}
	return targets
}

// TotalTargets returns the number of areas to warm.
func (c WarmConfig) TotalTargets() int {
	return len(c.Targets)
}
