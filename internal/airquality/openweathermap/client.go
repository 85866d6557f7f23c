// Package openweathermap is the OpenWeatherMap client behind the city's air
// pollution and weather feeds.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/provider/resilience"
	"github.com/airwise/airwise/internal/weather"
)

// ProviderName identifies this data provider.
const ProviderName = "openweathermap"

// DefaultBaseURL is the OpenWeatherMap API base URL.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey authenticates every call (required).
	APIKey string

	// BaseURL overrides the OpenWeatherMap endpoint, mainly for tests.
	BaseURL string

	// HTTPClient carries the retry and circuit breaker behavior. Nil gets
	// a client with default resilience settings.
	HTTPClient *resilience.Client

	// Health receives per-fetch outcomes when set.
	Health *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the air pollution and current weather endpoints.
type Client struct {
	apiKey  string
	baseURL string
	http    *resilience.Client
	health  *resilience.Registry
	log     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		health:  cfg.Health,
		log:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// GetCurrentPollution fetches the current air pollution reading for a location.
func (c *Client) GetCurrentPollution(ctx context.Context, lat, lon float64) (*airquality.PollutionSample, error) {
	samples, err := c.pollution(ctx, "/air_pollution", coords(lat, lon))
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty pollution list in response")
	}
	return &samples[0], nil
}

// GetPollutionForecast fetches hourly pollution forecast samples, covering
// roughly the next four days.
func (c *Client) GetPollutionForecast(ctx context.Context, lat, lon float64) ([]airquality.PollutionSample, error) {
	return c.pollution(ctx, "/air_pollution/forecast", coords(lat, lon))
}

// GetPollutionHistory fetches hourly pollution samples between start and end.
func (c *Client) GetPollutionHistory(ctx context.Context, lat, lon float64, start, end time.Time) ([]airquality.PollutionSample, error) {
	q := coords(lat, lon)
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("end", strconv.FormatInt(end.Unix(), 10))
	return c.pollution(ctx, "/air_pollution/history", q)
}

// GetCurrentWeather fetches current weather for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	q := coords(lat, lon)
	q.Set("units", "metric")

	var resp currentWeatherResponse
	if err := c.get(ctx, "/weather", q, &resp); err != nil {
		return nil, err
	}
	return toObservation(&resp), nil
}

// pollution hits one of the air pollution endpoints and converts the
// response list to domain samples.
func (c *Client) pollution(ctx context.Context, path string, q url.Values) ([]airquality.PollutionSample, error) {
	var resp airPollutionResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	samples := make([]airquality.PollutionSample, 0, len(resp.List))
	for _, item := range resp.List {
		samples = append(samples, toSample(item))
	}
	return samples, nil
}

// get performs one authenticated GET and decodes the JSON body into out.
// Outcomes are reported to the provider health registry when one is
// configured.
func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) (err error) {
	defer func() {
		if c.health == nil {
			return
		}
		if err != nil {
			c.health.RecordFailure(ProviderName, err)
			return
		}
		c.health.RecordSuccess(ProviderName)
	}()

	c.log.Debug().Str("path", path).Msg("openweathermap request")

	q.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openweathermap responded %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// coords builds the shared query parameters for a location.
func coords(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	return q
}

// toSample converts an OpenWeatherMap pollution entry to a domain sample.
func toSample(item pollutionListItem) airquality.PollutionSample {
	return airquality.PollutionSample{
		At:    time.Unix(item.Dt, 0),
		Index: item.Main.AQI,
		Components: airquality.Concentrations{
			PM25: item.Components.PM25,
			PM10: item.Components.PM10,
			O3:   item.Components.O3,
			NO2:  item.Components.NO2,
			SO2:  item.Components.SO2,
			CO:   item.Components.CO,
		},
	}
}

// toObservation converts an OpenWeatherMap weather response to the domain model.
func toObservation(resp *currentWeatherResponse) *weather.Observation {
	obs := &weather.Observation{
		Lat:         resp.Coord.Lat,
		Lon:         resp.Coord.Lon,
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		WindDeg:     resp.Wind.Deg,
		Pressure:    resp.Main.Pressure,
		Visibility:  float64(resp.Visibility),
		ObservedAt:  time.Unix(resp.Dt, 0),
		FetchedAt:   time.Now(),
	}

	if len(resp.Weather) > 0 {
		obs.Condition = mapCondition(resp.Weather[0].Main)
		obs.Description = resp.Weather[0].Description
	} else {
		obs.Condition = weather.ConditionUnknown
	}

	return obs
}

// conditionByGroup folds OpenWeatherMap's condition groups into the
// domain set. Groups the region never sees fall through to UNKNOWN.
var conditionByGroup = map[string]weather.Condition{
	"Clear":        weather.ConditionClear,
	"Clouds":       weather.ConditionClouds,
	"Rain":         weather.ConditionRain,
	"Drizzle":      weather.ConditionDrizzle,
	"Thunderstorm": weather.ConditionThunderstorm,
	"Snow":         weather.ConditionSnow,
	"Mist":         weather.ConditionMist,
	"Fog":          weather.ConditionFog,
	"Haze":         weather.ConditionHaze,
	"Smoke":        weather.ConditionSmoke,
	"Dust":         weather.ConditionDust,
	"Sand":         weather.ConditionDust,
}

func mapCondition(group string) weather.Condition {
	if cond, ok := conditionByGroup[group]; ok {
		return cond
	}
	return weather.ConditionUnknown
}

// OpenWeatherMap API response structures.

type airPollutionResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []pollutionListItem `json:"list"`
}

type pollutionListItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		CO   float64 `json:"co"`
		NO   float64 `json:"no"`
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NH3  float64 `json:"nh3"`
	} `json:"components"`
}

type currentWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}
