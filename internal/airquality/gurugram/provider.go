package gurugram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/weather"
)

// PollutionClient is the upstream pollution API surface the provider needs.
type PollutionClient interface {
	Name() string
	GetCurrentPollution(ctx context.Context, lat, lon float64) (*airquality.PollutionSample, error)
	GetPollutionForecast(ctx context.Context, lat, lon float64) ([]airquality.PollutionSample, error)
	GetPollutionHistory(ctx context.Context, lat, lon float64, start, end time.Time) ([]airquality.PollutionSample, error)
}

// WeatherSource supplies the city weather observation.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// ProviderConfig holds configuration for the Gurugram provider.
type ProviderConfig struct {
	// Pollution is the upstream pollution client (required).
	Pollution PollutionClient

	// Weather supplies the city observation for wind and the weather panel
	// (required).
	Weather WeatherSource

	// Distribution spreads the city reading over the areas (optional).
	Distribution *Distribution

	// Logger for provider operations.
	Logger zerolog.Logger
}

// Provider derives the monitored locations and city conditions for Gurugram
// from the upstream city-level feeds. Weather being unavailable never fails a
// fetch; the wind adjustment and weather panel fall back to defaults instead.
type Provider struct {
	pollution    PollutionClient
	weather      WeatherSource
	distribution *Distribution
	logger       zerolog.Logger
}

var (
	_ airquality.LocationProvider   = (*Provider)(nil)
	_ airquality.ConditionsProvider = (*Provider)(nil)
)

// NewProvider creates a Gurugram provider.
func NewProvider(cfg ProviderConfig) *Provider {
	dist := cfg.Distribution
	if dist == nil {
		dist = NewDistribution(DistributionConfig{})
	}
	return &Provider{
		pollution:    cfg.Pollution,
		weather:      cfg.Weather,
		distribution: dist,
		logger:       cfg.Logger,
	}
}

// Name returns the upstream provider name.
func (p *Provider) Name() string {
	return p.pollution.Name()
}

// FetchLocations returns the per-area monitored locations, derived from the
// current city reading and adjusted for wind.
func (p *Provider) FetchLocations(ctx context.Context) ([]airquality.MonitoredLocation, error) {
	sample, err := p.pollution.GetCurrentPollution(ctx, CityLat, CityLon)
	if err != nil {
		return nil, err
	}

	direction := "N"
	if obs, werr := p.weather.GetCurrentWeather(ctx, CityLat, CityLon); werr != nil {
		p.logger.Warn().Err(werr).Msg("weather unavailable, skipping wind adjustment")
	} else {
		direction = obs.WindDirection()
	}

	baseAQI := airquality.StandardAQI(sample.Index, sample.Components.PM25)
	return p.distribution.Spread(float64(baseAQI), sample.Components.PM25, direction), nil
}

// FetchConditions returns the city-level current conditions.
func (p *Provider) FetchConditions(ctx context.Context) (*airquality.Conditions, error) {
	sample, err := p.pollution.GetCurrentPollution(ctx, CityLat, CityLon)
	if err != nil {
		return nil, err
	}

	summary := airquality.WeatherSummary{Temperature: 30, Humidity: 60, WindSpeed: 5, WindDirection: "NE"}
	if obs, werr := p.weather.GetCurrentWeather(ctx, CityLat, CityLon); werr != nil {
		p.logger.Warn().Err(werr).Msg("weather unavailable, using default summary")
	} else {
		summary = airquality.WeatherSummary{
			Temperature:   obs.Temperature,
			Humidity:      obs.Humidity,
			WindSpeed:     obs.WindSpeed,
			WindDirection: obs.WindDirection(),
		}
	}

	aqi := airquality.StandardAQI(sample.Index, sample.Components.PM25)
	return &airquality.Conditions{
		AQI:        aqi,
		Category:   airquality.CategoryFor(float64(aqi)),
		Location:   "Gurugram",
		ObservedAt: sample.At,
		FetchedAt:  time.Now(),
		Pollutants: sample.Components,
		Weather:    summary,
	}, nil
}

// FetchForecast returns hourly pollution forecast samples for the city.
func (p *Provider) FetchForecast(ctx context.Context) ([]airquality.PollutionSample, error) {
	return p.pollution.GetPollutionForecast(ctx, CityLat, CityLon)
}

// FetchHistory returns hourly pollution samples between start and end.
func (p *Provider) FetchHistory(ctx context.Context, start, end time.Time) ([]airquality.PollutionSample, error) {
	return p.pollution.GetPollutionHistory(ctx, CityLat, CityLon, start, end)
}
