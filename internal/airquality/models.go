// Package airquality provides the monitored-location model, the spatial
// estimator, and the refresh scheduler behind the AirWise map.
package airquality

import (
	"errors"
	"math"
	"time"
)

// Domain errors.
var (
	ErrEmptyLocationSet    = errors.New("no monitored locations available")
	ErrInvalidQueryPoint   = errors.New("query point coordinates out of range")
	ErrRefreshInFlight     = errors.New("refresh already in flight")
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// MonitoredLocation is a named reporting point with a measured pollution
// index. Locations are immutable once fetched; every refresh replaces the
// full set rather than merging into it.
type MonitoredLocation struct {
	Name string
	Lat  float64
	Lon  float64

	// AQI is the pollution index on the 0-500 standard scale.
	AQI float64

	// PM25 is the fine particulate concentration in µg/m³.
	// Zero when the source reported none.
	PM25 float64
}

// QueryPoint is an ad-hoc coordinate supplied by a map interaction.
// It exists only for the duration of producing an EstimatedReading and is
// never stored.
type QueryPoint struct {
	Lat float64
	Lon float64
}

// Validate rejects coordinates outside the WGS84 range. Out-of-range points
// are rejected rather than clamped.
func (q QueryPoint) Validate() error {
	if math.IsNaN(q.Lat) || math.IsNaN(q.Lon) {
		return ErrInvalidQueryPoint
	}
	if q.Lat < -90 || q.Lat > 90 {
		return ErrInvalidQueryPoint
	}
	if q.Lon < -180 || q.Lon > 180 {
		return ErrInvalidQueryPoint
	}
	return nil
}

// EstimatedReading is the pollution estimate at a query point, derived
// synchronously from a single snapshot.
type EstimatedReading struct {
	// Label names the reading: the location name for an exact match,
	// otherwise EstimatedLabel.
	Label string

	Lat float64
	Lon float64

	// AQI is the estimated pollution index. Exact matches pass the
	// location's value through unrounded; interpolated values are rounded
	// to the nearest integer.
	AQI float64

	// Exact is true when an exact-match location supplied the value and
	// interpolation was bypassed.
	Exact bool

	Category Category
}

// EstimatedLabel is the label used for interpolated readings.
const EstimatedLabel = "Estimated"

// Snapshot is one fetched generation of the monitored-location set.
// Estimation always runs against exactly one snapshot; two generations are
// never blended.
type Snapshot struct {
	Locations []MonitoredLocation

	// FetchedAt is when this generation was retrieved (or substituted).
	FetchedAt time.Time

	// Fallback is true when the fixed fallback set was substituted after a
	// fetch failure.
	Fallback bool

	// Provider identifies the data source.
	Provider string
}

// Clone returns a copy whose location slice is independent of the receiver.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Locations = make([]MonitoredLocation, len(s.Locations))
	copy(out.Locations, s.Locations)
	return out
}

// SchedulerState identifies the refresh loop's position in its cycle.
type SchedulerState string

const (
	StateIdle       SchedulerState = "idle"
	StateRefreshing SchedulerState = "refreshing"
	StateDisabled   SchedulerState = "disabled"
)

// RefreshState is the externally visible state of the refresh loop.
type RefreshState struct {
	State              SchedulerState
	LastUpdated        time.Time
	CountdownSeconds   int
	AutoRefreshEnabled bool
	Refreshing         bool

	// UsingFallback is true while the current snapshot is the substituted
	// fallback set; consumers annotate the "last updated" label with it.
	UsingFallback bool

	// LastError holds the most recent fetch failure, empty after a
	// successful refresh.
	LastError string
}

// FallbackLocations returns the fixed set substituted when a fetch fails,
// so estimation always has non-empty input. Values are preset readings for
// four well-known Gurugram locations.
func FallbackLocations() []MonitoredLocation {
	return []MonitoredLocation{
		{Name: "Sector 56", Lat: 28.4089, Lon: 77.0926, AQI: 175, PM25: 85.5},
		{Name: "DLF Cyber City", Lat: 28.4965, Lon: 77.0909, AQI: 160, PM25: 78.2},
		{Name: "Golf Course Road", Lat: 28.4321, Lon: 77.1025, AQI: 155, PM25: 75.8},
		{Name: "MG Road", Lat: 28.4773, Lon: 77.0497, AQI: 168, PM25: 82.3},
	}
}
