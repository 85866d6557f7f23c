package models

import (
	"github.com/airwise/airwise/internal/advisory"
)

// Alert is one health advisory.
type Alert struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// FromAlerts maps domain alerts to their API form.
func FromAlerts(alerts []advisory.Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, Alert{
			ID:        a.ID,
			Level:     string(a.Severity),
			Title:     a.Title,
			Message:   a.Message,
			Timestamp: Timestamp(a.IssuedAt),
		})
	}
	return out
}

// Hotspot is one graded location on the hotspot map.
type Hotspot struct {
	ID                string          `json:"id"`
	Location          HotspotLocation `json:"location"`
	CurrentAQI        float64         `json:"current_aqi"`
	DominantPollutant string          `json:"dominant_pollutant"`
	RiskLevel         string          `json:"risk_level"`
	LastSync          string          `json:"last_sync"`
	Recommendation    string          `json:"recommendation"`
}

// HotspotLocation names and places a hotspot.
type HotspotLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// AirQualityZones groups locations into colour bands.
type AirQualityZones struct {
	GreenZones  []string `json:"green_zones"`
	YellowZones []string `json:"yellow_zones"`
	RedZones    []string `json:"red_zones"`
}

// WeatherInfluence is the display-formatted weather panel on the hotspot map.
type WeatherInfluence struct {
	WindSpeed     string `json:"wind_speed"`
	WindDirection string `json:"wind_direction"`
	Humidity      string `json:"humidity"`
	Temperature   string `json:"temperature"`
	Visibility    string `json:"visibility"`
	Dispersal     string `json:"dispersal"`
}

// HotspotMap is the graded city map payload.
type HotspotMap struct {
	Timestamp       Timestamp        `json:"timestamp"`
	Source          string           `json:"source"`
	CoverageArea    string           `json:"coverage_area"`
	Resolution      string           `json:"resolution"`
	Hotspots        []Hotspot        `json:"hotspots"`
	AirQualityZones AirQualityZones  `json:"air_quality_zones"`
	Weather         WeatherInfluence `json:"weather_influence"`
}

// FromHotspotMap maps the domain hotspot map to its API form.
func FromHotspotMap(m *advisory.HotspotMap) HotspotMap {
	hotspots := make([]Hotspot, 0, len(m.Hotspots))
	for _, h := range m.Hotspots {
		hotspots = append(hotspots, Hotspot{
			ID: h.ID,
			Location: HotspotLocation{
				Lat:  h.Lat,
				Lng:  h.Lon,
				Name: h.Name,
			},
			CurrentAQI:        h.AQI,
			DominantPollutant: h.DominantPollutant,
			RiskLevel:         string(h.RiskLevel),
			LastSync:          h.LastSync,
			Recommendation:    h.Recommendation,
		})
	}
	return HotspotMap{
		Timestamp:    Timestamp(m.GeneratedAt),
		Source:       m.Source,
		CoverageArea: m.CoverageArea,
		Resolution:   m.Resolution,
		Hotspots:     hotspots,
		AirQualityZones: AirQualityZones{
			GreenZones:  m.Zones.Green,
			YellowZones: m.Zones.Yellow,
			RedZones:    m.Zones.Red,
		},
		Weather: WeatherInfluence{
			WindSpeed:     m.Weather.WindSpeed,
			WindDirection: m.Weather.WindDirection,
			Humidity:      m.Weather.Humidity,
			Temperature:   m.Weather.Temperature,
			Visibility:    m.Weather.Visibility,
			Dispersal:     m.Weather.Dispersal,
		},
	}
}
