package gurugram

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/airwise/airwise/internal/airquality"
)

// Wind sectors that push pollution toward the opposite side of the city.
var (
	northWinds = []string{"N", "NNE", "NE", "NNW", "NW"}
	southWinds = []string{"S", "SSE", "SE", "SSW", "SW"}
	eastWinds  = []string{"E", "ENE", "ESE"}
	westWinds  = []string{"W", "WNW", "WSW"}
)

// DistributionConfig holds configuration for the distribution model.
type DistributionConfig struct {
	// Areas to spread readings over (default: Areas()).
	Areas []Area

	// Now supplies the clock for the rush-hour factor (default: time.Now).
	Now func() time.Time

	// Rand supplies uniform values in [0,1) for the per-area jitter
	// (default: math/rand/v2). Tests pin it to a constant.
	Rand func() float64
}

// Distribution derives per-area readings from the single city-level reading,
// scaled by each area's emission profile, the hour of day, and the wind.
type Distribution struct {
	areas []Area
	now   func() time.Time
	rand  func() float64
}

// NewDistribution creates a distribution model.
func NewDistribution(cfg DistributionConfig) *Distribution {
	areas := cfg.Areas
	if areas == nil {
		areas = Areas()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	random := cfg.Rand
	if random == nil {
		random = rand.Float64
	}
	return &Distribution{areas: areas, now: now, rand: random}
}

// Spread produces one monitored location per area from the city-level AQI
// and PM2.5. AQI values are truncated to integers, PM2.5 is rounded to one
// decimal, matching the map's display precision.
func (d *Distribution) Spread(baseAQI, basePM25 float64, windDirection string) []airquality.MonitoredLocation {
	tf := timeFactor(d.now().Hour())
	affected := windAffected(windDirection)

	out := make([]airquality.MonitoredLocation, 0, len(d.areas))
	for _, area := range d.areas {
		localFactor := area.Factor * tf
		pm25Factor := area.PM25Factor * tf

		if affected(area.Lat, area.Lon) {
			localFactor *= 1.12
			pm25Factor *= 1.15
		}

		// ±5% jitter so the map does not look synthetic.
		jitter := 0.95 + d.rand()*0.10

		out = append(out, airquality.MonitoredLocation{
			Name: area.Name,
			Lat:  area.Lat,
			Lon:  area.Lon,
			AQI:  float64(int(baseAQI * localFactor * jitter)),
			PM25: math.Round(basePM25*pm25Factor*jitter*10) / 10,
		})
	}
	return out
}

// timeFactor scales pollution by the hour of day.
func timeFactor(hour int) float64 {
	switch {
	case hour >= 8 && hour <= 10: // morning rush hour
		return 1.15
	case hour >= 17 && hour <= 20: // evening rush hour
		return 1.18
	case hour >= 22 || hour <= 5: // night
		return 0.85
	default:
		return 1.0
	}
}

// windAffected returns the predicate selecting areas downwind of the given
// direction. Unknown directions affect nothing.
func windAffected(direction string) func(lat, lon float64) bool {
	switch {
	case slices.Contains(northWinds, direction):
		return func(lat, _ float64) bool { return lat < 28.42 }
	case slices.Contains(southWinds, direction):
		return func(lat, _ float64) bool { return lat > 28.47 }
	case slices.Contains(eastWinds, direction):
		return func(_, lon float64) bool { return lon < 77.00 }
	case slices.Contains(westWinds, direction):
		return func(_, lon float64) bool { return lon > 77.05 }
	default:
		return func(_, _ float64) bool { return false }
	}
}
