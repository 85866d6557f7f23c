package advisory

import (
	"fmt"
	"time"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/weather"
)

// RiskLevel grades a hotspot for outdoor exposure.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Hotspot is one monitored location graded for the hotspot map.
type Hotspot struct {
	ID                string
	Name              string
	Lat               float64
	Lon               float64
	AQI               float64
	DominantPollutant string
	RiskLevel         RiskLevel
	Recommendation    string
	LastSync          string
}

// Zones groups the monitored locations into colour bands.
type Zones struct {
	Green  []string
	Yellow []string
	Red    []string
}

// WeatherInfluence is the weather panel shown beside the hotspot map, with
// values pre-formatted for display.
type WeatherInfluence struct {
	WindSpeed     string
	WindDirection string
	Humidity      string
	Temperature   string
	Visibility    string
	Dispersal     string
}

// HotspotMap is the graded city map built from one location snapshot.
type HotspotMap struct {
	GeneratedAt  time.Time
	Source       string
	CoverageArea string
	Resolution   string
	Hotspots     []Hotspot
	Zones        Zones
	Weather      WeatherInfluence
}

const (
	mapSource       = "OpenWeatherMap + Geospatial Analysis"
	mapCoverageArea = "Gurugram, Haryana"
	mapResolution   = "1km grid with 500m interpolation"
)

// InfluenceFrom formats a weather observation for the hotspot map panel.
// Wind speed converts from m/s to km/h and visibility from metres to km.
func InfluenceFrom(obs *weather.Observation) WeatherInfluence {
	return WeatherInfluence{
		WindSpeed:     fmt.Sprintf("%.0f km/h", obs.WindSpeed*3.6),
		WindDirection: obs.WindDirection(),
		Humidity:      fmt.Sprintf("%.0f%%", obs.Humidity),
		Temperature:   fmt.Sprintf("%.0f°C", obs.Temperature),
		Visibility:    fmt.Sprintf("%.1f km", obs.Visibility/1000),
		Dispersal:     obs.DispersalConditions(),
	}
}

// FallbackInfluence is the fixed weather panel served when no observation is
// available.
func FallbackInfluence() WeatherInfluence {
	return WeatherInfluence{
		WindSpeed:     "12 km/h",
		WindDirection: "NW",
		Humidity:      "68%",
		Temperature:   "28°C",
		Visibility:    "4.2 km",
		Dispersal:     "good",
	}
}

// BuildHotspotMap grades every monitored location and assembles the map.
// syncedAt is when the snapshot was fetched; the per-hotspot sync age is
// derived from it.
func BuildHotspotMap(locations []airquality.MonitoredLocation, influence WeatherInfluence, syncedAt, now time.Time) *HotspotMap {
	m := &HotspotMap{
		GeneratedAt:  now,
		Source:       mapSource,
		CoverageArea: mapCoverageArea,
		Resolution:   mapResolution,
		Hotspots:     make([]Hotspot, 0, len(locations)),
		Weather:      influence,
	}

	lastSync := syncAge(syncedAt, now)

	for i, loc := range locations {
		risk, recommendation := gradeRisk(loc.AQI)

		switch {
		case loc.AQI <= 75:
			m.Zones.Green = append(m.Zones.Green, loc.Name)
		case loc.AQI <= 150:
			m.Zones.Yellow = append(m.Zones.Yellow, loc.Name)
		default:
			m.Zones.Red = append(m.Zones.Red, loc.Name)
		}

		m.Hotspots = append(m.Hotspots, Hotspot{
			ID:                fmt.Sprintf("GGN_%03d", i+1),
			Name:              loc.Name,
			Lat:               loc.Lat,
			Lon:               loc.Lon,
			AQI:               loc.AQI,
			DominantPollutant: dominantPollutant(loc.AQI),
			RiskLevel:         risk,
			Recommendation:    recommendation,
			LastSync:          lastSync,
		})
	}

	return m
}

func gradeRisk(aqi float64) (RiskLevel, string) {
	switch {
	case aqi <= 50:
		return RiskLow, "Excellent for all outdoor activities"
	case aqi <= 100:
		return RiskModerate, "Good for outdoor activities"
	case aqi <= 150:
		return RiskModerate, "Acceptable for most outdoor activities"
	case aqi <= 200:
		return RiskHigh, "Limit prolonged outdoor exposure"
	default:
		return RiskVeryHigh, "Avoid outdoor activities"
	}
}

func dominantPollutant(aqi float64) string {
	switch {
	case aqi > 100:
		return "PM2.5"
	case aqi > 75:
		return "PM10"
	default:
		return "O3"
	}
}

func syncAge(syncedAt, now time.Time) string {
	age := now.Sub(syncedAt)
	if age < 0 {
		age = 0
	}
	return fmt.Sprintf("%d seconds ago", int(age.Seconds()))
}
