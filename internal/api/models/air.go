// Package models holds the API's request and response shapes and the
// mappings from domain types into them.
package models

import (
	"github.com/airwise/airwise/internal/airquality"
)

// Category is one band of the pollution index scale.
type Category struct {
	Name string `json:"name"`

	// MaxAQI is the band's inclusive upper bound; omitted for the open-ended
	// top band.
	MaxAQI int    `json:"max_aqi,omitempty"`
	Color  string `json:"color"`
}

// FromCategory maps a domain category to its API form.
func FromCategory(c airquality.Category) Category {
	return Category{
		Name:   string(c),
		MaxAQI: c.MaxAQI(),
		Color:  c.Color(),
	}
}

// Pollutants is the measured concentration set in µg/m³ (CO in mg/m³).
type Pollutants struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

// WeatherSummary is the weather panel beside the AQI dial.
type WeatherSummary struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
}

// CurrentConditions is the city-level current reading.
type CurrentConditions struct {
	AQI        int            `json:"aqi"`
	Category   Category       `json:"category"`
	Location   string         `json:"location"`
	Timestamp  Timestamp      `json:"timestamp"`
	Pollutants Pollutants     `json:"pollutants"`
	Weather    WeatherSummary `json:"weather"`
	Fallback   bool           `json:"fallback,omitempty"`
}

// FromConditions maps domain conditions to their API form.
func FromConditions(c *airquality.Conditions) CurrentConditions {
	return CurrentConditions{
		AQI:       c.AQI,
		Category:  FromCategory(c.Category),
		Location:  c.Location,
		Timestamp: Timestamp(c.ObservedAt),
		Pollutants: Pollutants{
			PM25: c.Pollutants.PM25,
			PM10: c.Pollutants.PM10,
			O3:   c.Pollutants.O3,
			NO2:  c.Pollutants.NO2,
			SO2:  c.Pollutants.SO2,
			CO:   c.Pollutants.CO,
		},
		Weather: WeatherSummary{
			Temperature:   c.Weather.Temperature,
			Humidity:      c.Weather.Humidity,
			WindSpeed:     c.Weather.WindSpeed,
			WindDirection: c.Weather.WindDirection,
		},
		Fallback: c.Fallback,
	}
}

// MonitoredLocation is one reporting point on the map.
type MonitoredLocation struct {
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	AQI      float64  `json:"aqi"`
	PM25     float64  `json:"pm25"`
	Category Category `json:"category"`
}

// Locations is the monitored-location set from one snapshot, paired with the
// refresh loop's state so map clients can render the countdown alongside it.
type Locations struct {
	Locations []MonitoredLocation `json:"locations"`
	FetchedAt Timestamp           `json:"fetched_at"`
	Fallback  bool                `json:"fallback,omitempty"`
	Provider  string              `json:"provider,omitempty"`
	Refresh   RefreshState        `json:"refresh"`
}

// FromSnapshot maps a location snapshot to its API form.
func FromSnapshot(s airquality.Snapshot, rs airquality.RefreshState) Locations {
	locs := make([]MonitoredLocation, 0, len(s.Locations))
	for _, l := range s.Locations {
		locs = append(locs, MonitoredLocation{
			Name:     l.Name,
			Lat:      l.Lat,
			Lon:      l.Lon,
			AQI:      l.AQI,
			PM25:     l.PM25,
			Category: FromCategory(airquality.CategoryFor(l.AQI)),
		})
	}
	return Locations{
		Locations: locs,
		FetchedAt: Timestamp(s.FetchedAt),
		Fallback:  s.Fallback,
		Provider:  s.Provider,
		Refresh:   FromRefreshState(rs),
	}
}

// EstimatedReading is the pollution estimate at a queried coordinate.
type EstimatedReading struct {
	Label    string   `json:"label"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	AQI      float64  `json:"aqi"`
	Exact    bool     `json:"exact"`
	Category Category `json:"category"`
}

// FromEstimate maps a domain estimate to its API form.
func FromEstimate(e airquality.EstimatedReading) EstimatedReading {
	return EstimatedReading{
		Label:    e.Label,
		Lat:      e.Lat,
		Lon:      e.Lon,
		AQI:      e.AQI,
		Exact:    e.Exact,
		Category: FromCategory(e.Category),
	}
}

// PollutantMeans are the charted mean concentrations.
type PollutantMeans struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
}

// ForecastDay is one aggregated day of the outlook.
type ForecastDay struct {
	Date       string         `json:"date"`
	AQIMax     int            `json:"aqi_max"`
	AQIMin     int            `json:"aqi_min"`
	Category   string         `json:"category"`
	Pollutants PollutantMeans `json:"pollutants"`
}

// Forecast is the multi-day outlook.
type Forecast struct {
	Days      []ForecastDay `json:"days"`
	Fallback  bool          `json:"fallback,omitempty"`
	FetchedAt Timestamp     `json:"fetched_at"`
}

// FromForecast maps a domain forecast to its API form.
func FromForecast(f *airquality.Forecast) Forecast {
	days := make([]ForecastDay, 0, len(f.Days))
	for _, d := range f.Days {
		days = append(days, ForecastDay{
			Date:     d.Date,
			AQIMax:   d.AQIMax,
			AQIMin:   d.AQIMin,
			Category: string(d.Category),
			Pollutants: PollutantMeans{
				PM25: d.Pollutants.PM25,
				PM10: d.Pollutants.PM10,
				O3:   d.Pollutants.O3,
				NO2:  d.Pollutants.NO2,
			},
		})
	}
	return Forecast{
		Days:      days,
		Fallback:  f.Fallback,
		FetchedAt: Timestamp(f.FetchedAt),
	}
}

// TrendHour is one hour of the trailing 24-hour series.
type TrendHour struct {
	Timestamp string  `json:"timestamp"`
	Hour      string  `json:"hour"`
	AQI       int     `json:"aqi"`
	PM25      float64 `json:"pm25"`
}

// Trend is the trailing 24-hour hourly series.
type Trend struct {
	Hours     []TrendHour `json:"hours"`
	Fallback  bool        `json:"fallback,omitempty"`
	FetchedAt Timestamp   `json:"fetched_at"`
}

// FromTrend maps a domain trend to its API form.
func FromTrend(t *airquality.Trend) Trend {
	hours := make([]TrendHour, 0, len(t.Hours))
	for _, h := range t.Hours {
		hours = append(hours, TrendHour{
			Timestamp: h.Clock,
			Hour:      h.Hour,
			AQI:       h.AQI,
			PM25:      h.PM25,
		})
	}
	return Trend{
		Hours:     hours,
		Fallback:  t.Fallback,
		FetchedAt: Timestamp(t.FetchedAt),
	}
}

// HistoryDay is one day of the historical series, newest first.
type HistoryDay struct {
	Date       string         `json:"date"`
	AQI        int            `json:"aqi"`
	Pollutants PollutantMeans `json:"pollutants"`
}

// FromHistory maps the domain history series to its API form.
func FromHistory(days []airquality.HistoryDay) []HistoryDay {
	out := make([]HistoryDay, 0, len(days))
	for _, d := range days {
		out = append(out, HistoryDay{
			Date: d.Date,
			AQI:  d.AQI,
			Pollutants: PollutantMeans{
				PM25: d.Pollutants.PM25,
				PM10: d.Pollutants.PM10,
				O3:   d.Pollutants.O3,
				NO2:  d.Pollutants.NO2,
			},
		})
	}
	return out
}

// RefreshState is the refresh loop's externally visible state.
type RefreshState struct {
	State              string    `json:"state"`
	LastUpdated        Timestamp `json:"last_updated"`
	CountdownSeconds   int       `json:"countdown_seconds"`
	AutoRefreshEnabled bool      `json:"auto_refresh_enabled"`
	Refreshing         bool      `json:"refreshing"`
	UsingFallback      bool      `json:"using_fallback,omitempty"`
	LastError          string    `json:"last_error,omitempty"`
}

// FromRefreshState maps the scheduler state to its API form.
func FromRefreshState(s airquality.RefreshState) RefreshState {
	return RefreshState{
		State:              string(s.State),
		LastUpdated:        Timestamp(s.LastUpdated),
		CountdownSeconds:   s.CountdownSeconds,
		AutoRefreshEnabled: s.AutoRefreshEnabled,
		Refreshing:         s.Refreshing,
		UsingFallback:      s.UsingFallback,
		LastError:          s.LastError,
	}
}

// AutoRefreshRequest toggles the automatic refresh loop.
type AutoRefreshRequest struct {
	Enabled bool `json:"enabled"`
}

// SnapshotSummary condenses a location snapshot for the live stream.
type SnapshotSummary struct {
	Locations     int     `json:"locations"`
	MaxAQI        float64 `json:"max_aqi"`
	WorstLocation string  `json:"worst_location"`
	Fallback      bool    `json:"fallback,omitempty"`
}

// LiveUpdate is one frame of the live state stream.
type LiveUpdate struct {
	Type    string           `json:"type"`
	State   RefreshState     `json:"state"`
	Summary *SnapshotSummary `json:"summary,omitempty"`
}

// NewLiveUpdate builds a stream frame. The summary is omitted until the
// first snapshot exists.
func NewLiveUpdate(rs airquality.RefreshState, snap airquality.Snapshot, ok bool) LiveUpdate {
	update := LiveUpdate{Type: "state", State: FromRefreshState(rs)}
	if !ok {
		return update
	}

	summary := SnapshotSummary{
		Locations: len(snap.Locations),
		Fallback:  snap.Fallback,
	}
	for _, l := range snap.Locations {
		if l.AQI > summary.MaxAQI {
			summary.MaxAQI = l.AQI
			summary.WorstLocation = l.Name
		}
	}
	update.Summary = &summary
	return update
}
