package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwise/airwise/internal/advisory"
	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/api"
	"github.com/airwise/airwise/internal/api/middleware"
	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/prefs"
	"github.com/airwise/airwise/internal/provider/resilience"
	"github.com/airwise/airwise/internal/weather"
)

type fakeLocationProvider struct{}

func (fakeLocationProvider) Name() string { return "test-distribution" }

func (fakeLocationProvider) FetchLocations(context.Context) ([]airquality.MonitoredLocation, error) {
	return []airquality.MonitoredLocation{
		{Name: "Sector 56", Lat: 28.4089, Lon: 77.0926, AQI: 175, PM25: 85.5},
		{Name: "Udyog Vihar", Lat: 28.5015, Lon: 77.0854, AQI: 312, PM25: 158.2},
		{Name: "Biodiversity Park", Lat: 28.4515, Lon: 77.0835, AQI: 48, PM25: 21.3},
	}, nil
}

type fakeConditionsProvider struct{}

func (fakeConditionsProvider) Name() string { return "test-conditions" }

func (fakeConditionsProvider) FetchConditions(context.Context) (*airquality.Conditions, error) {
	return &airquality.Conditions{
		AQI:        172,
		Category:   airquality.CategoryFor(172),
		Location:   "Gurugram",
		ObservedAt: time.Now(),
		FetchedAt:  time.Now(),
		Pollutants: airquality.Concentrations{PM25: 82.4, PM10: 140.1, O3: 31.2, NO2: 44.8},
		Weather:    airquality.WeatherSummary{Temperature: 24.5, Humidity: 61, WindSpeed: 3.1, WindDirection: "NW"},
	}, nil
}

func (fakeConditionsProvider) FetchForecast(context.Context) ([]airquality.PollutionSample, error) {
	now := time.Now()
	samples := make([]airquality.PollutionSample, 0, 24)
	for i := 0; i < 24; i++ {
		samples = append(samples, airquality.PollutionSample{
			At:         now.Add(time.Duration(i) * time.Hour),
			Index:      4,
			Components: airquality.Concentrations{PM25: 80, PM10: 130, O3: 30, NO2: 40},
		})
	}
	return samples, nil
}

func (fakeConditionsProvider) FetchHistory(ctx context.Context, start, end time.Time) ([]airquality.PollutionSample, error) {
	samples := make([]airquality.PollutionSample, 0, 24)
	for at := start; at.Before(end); at = at.Add(time.Hour) {
		samples = append(samples, airquality.PollutionSample{
			At:         at,
			Index:      3,
			Components: airquality.Concentrations{PM25: 60, PM10: 100, O3: 25, NO2: 35},
		})
	}
	return samples, nil
}

type fakeWeather struct{}

func (fakeWeather) GetCurrentWeather(context.Context, float64, float64) (*weather.Observation, error) {
	return &weather.Observation{
		Temperature: 24.5,
		Humidity:    61,
		WindSpeed:   3.1,
		WindDeg:     315,
		Visibility:  4000,
		ObservedAt:  time.Now(),
	}, nil
}

// newTestRouter wires the real services over in-memory fakes, the way main
// does over the live providers.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	scheduler := airquality.NewScheduler(airquality.SchedulerConfig{
		Provider: fakeLocationProvider{},
		Logger:   logger,
	})
	require.NoError(t, scheduler.TriggerNow(context.Background()))

	conditions := airquality.NewService(airquality.ServiceConfig{
		Provider: fakeConditionsProvider{},
		Logger:   logger,
	})

	advisories := advisory.NewService(advisory.ServiceConfig{
		Conditions: conditions,
		Snapshots:  scheduler,
		Weather:    fakeWeather{},
		Logger:     logger,
	})

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	return api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2026-01-01T00:00:00Z",
		Logger:      logger,
		Metrics:     metrics,
		Conditions:  conditions,
		Scheduler:   scheduler,
		Advisories:  advisories,
		Preferences: prefs.NewService(prefs.NewMemoryRepository()),
		Providers:   resilience.NewRegistry(),
	})
}

func TestRouter_Current(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/current", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var conditions models.CurrentConditions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conditions))
	assert.Equal(t, 172, conditions.AQI)
	assert.Equal(t, "Unhealthy", conditions.Category.Name)
}

func TestRouter_Locations(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/locations", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var locations models.Locations
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &locations))
	assert.Len(t, locations.Locations, 3)
	assert.Equal(t, "test-distribution", locations.Provider)
	assert.NotZero(t, locations.Refresh.CountdownSeconds)
}

func TestRouter_Estimate(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/estimate?lat=28.4089&lon=77.0926", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var estimate models.EstimatedReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &estimate))
	assert.True(t, estimate.Exact)
	assert.Equal(t, "Sector 56", estimate.Label)
}

func TestRouter_Estimate_ValidationProblem(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/estimate?lat=91&lon=200", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "https://api.airwise.in/problems/validation-error", problem.Type)
	assert.NotEmpty(t, problem.TraceID)
	assert.Len(t, problem.Errors, 2)
}

func TestRouter_Forecast(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/forecast", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var forecast models.Forecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.NotEmpty(t, forecast.Days)
}

func TestRouter_Trend(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/trend", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var trend models.Trend
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))
	assert.NotEmpty(t, trend.Hours)
}

func TestRouter_History(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/history?days=5", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Days []models.HistoryDay `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Days, 5)
}

func TestRouter_Categories(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/categories", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var legend struct {
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &legend))
	assert.Len(t, legend.Categories, 6)
}

func TestRouter_RefreshStateAndTrigger(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/air/refresh", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var state models.RefreshState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.State)
	assert.True(t, state.AutoRefreshEnabled)

	req = httptest.NewRequest(http.MethodPost, "/v1/air/refresh", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 300, state.CountdownSeconds)
}

func TestRouter_SetAutoRefresh(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(models.AutoRefreshRequest{Enabled: false})
	req := httptest.NewRequest(http.MethodPut, "/v1/air/refresh/auto", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var state models.RefreshState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "disabled", state.State)
	assert.False(t, state.AutoRefreshEnabled)
}

func TestRouter_Alerts(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Alerts []models.Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	// City AQI 172 sits in the unhealthy band, so alerts fire.
	require.NotEmpty(t, got.Alerts)
	assert.Equal(t, "Unhealthy Air Quality", got.Alerts[0].Title)
}

func TestRouter_Recommendations(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/recommendations", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Recommendations)
}

func TestRouter_Hotspots(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/hotspots", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var hotspots models.HotspotMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hotspots))
	assert.Len(t, hotspots.Hotspots, 3)
	assert.Contains(t, hotspots.AirQualityZones.RedZones, "Udyog Vihar")
	assert.Contains(t, hotspots.AirQualityZones.GreenZones, "Biodiversity Park")
	assert.Equal(t, "NW", hotspots.Weather.WindDirection)
}

func TestRouter_Preferences(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/preferences/user123", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "all", got.AlertThreshold)

	got.AlertThreshold = "hazardous"
	body, _ := json.Marshal(got)
	req = httptest.NewRequest(http.MethodPut, "/v1/preferences/user123", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "hazardous", got.AlertThreshold)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_Readyz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
}

func TestRouter_Version(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/version", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var version models.VersionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &version))
	assert.Equal(t, "test", version.Version)
	assert.Equal(t, "airwise-api", version.Service)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_LiveStream_UpgradesThroughMiddleware(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// The upgrade only works if every wrapped response writer in the
	// middleware chain passes hijacking through.
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/air/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var update models.LiveUpdate
	require.NoError(t, json.Unmarshal(payload, &update))
	assert.Equal(t, "state", update.Type)
	require.NotNil(t, update.Summary)
	assert.Equal(t, 3, update.Summary.Locations)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
