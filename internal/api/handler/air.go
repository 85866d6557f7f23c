// Package handler provides HTTP handlers for the AirWise API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/api/response"
)

// ConditionsService serves city-level conditions and outlook series.
type ConditionsService interface {
	Current(ctx context.Context) *airquality.Conditions
	GetForecast(ctx context.Context) *airquality.Forecast
	GetTrend(ctx context.Context) *airquality.Trend
	History(days int) []airquality.HistoryDay
}

// RefreshScheduler exposes the refresh loop's snapshot, state, and controls.
type RefreshScheduler interface {
	Snapshot() (airquality.Snapshot, bool)
	State() airquality.RefreshState
	Estimate(point airquality.QueryPoint) (airquality.EstimatedReading, error)
	TriggerNow(ctx context.Context) error
	SetAutoRefresh(enabled bool)
}

// AirHandler handles air quality endpoints.
type AirHandler struct {
	conditions ConditionsService
	scheduler  RefreshScheduler
}

// NewAirHandler creates a new AirHandler.
func NewAirHandler(conditions ConditionsService, scheduler RefreshScheduler) *AirHandler {
	return &AirHandler{
		conditions: conditions,
		scheduler:  scheduler,
	}
}

// Current handles GET /v1/air/current - city-level current conditions.
func (h *AirHandler) Current(w http.ResponseWriter, r *http.Request) {
	conditions := h.conditions.Current(r.Context())
	response.JSON(w, r, http.StatusOK, models.FromConditions(conditions))
}

// Locations handles GET /v1/air/locations - the monitored-location snapshot
// plus the refresh loop state, which together drive the map view.
func (h *AirHandler) Locations(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.scheduler.Snapshot()
	if !ok {
		response.Fail(w, r, http.StatusServiceUnavailable, "no location readings available yet")
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromSnapshot(snapshot, h.scheduler.State()))
}

// Estimate handles GET /v1/air/estimate - pollution estimate at a coordinate.
func (h *AirHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	point, fieldErrors := parseQueryPoint(r)
	if len(fieldErrors) > 0 {
		response.Validation(w, r, "invalid query coordinates", fieldErrors)
		return
	}

	estimate, err := h.scheduler.Estimate(point)
	if err != nil {
		if errors.Is(err, airquality.ErrEmptyLocationSet) {
			response.Fail(w, r, http.StatusServiceUnavailable, "no location readings available yet")
			return
		}
		response.Fail(w, r, http.StatusInternalServerError, "failed to estimate air quality")
		return
	}

	response.JSON(w, r, http.StatusOK, models.FromEstimate(estimate))
}

// parseQueryPoint reads and validates the lat/lon query parameters.
// Out-of-range coordinates are rejected, not clamped.
func parseQueryPoint(r *http.Request) (airquality.QueryPoint, []models.FieldError) {
	var fieldErrors []models.FieldError
	var point airquality.QueryPoint

	lat, latErr := parseCoordinate(r.URL.Query().Get("lat"))
	if latErr != "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: latErr, Code: "invalid"})
	}
	lon, lonErr := parseCoordinate(r.URL.Query().Get("lon"))
	if lonErr != "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: lonErr, Code: "invalid"})
	}
	if len(fieldErrors) > 0 {
		return point, fieldErrors
	}

	point = airquality.QueryPoint{Lat: lat, Lon: lon}
	if err := point.Validate(); err != nil {
		if lat < -90 || lat > 90 {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be between -90 and 90", Code: "out_of_range"})
		}
		if lon < -180 || lon > 180 {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be between -180 and 180", Code: "out_of_range"})
		}
	}
	return point, fieldErrors
}

func parseCoordinate(raw string) (float64, string) {
	if raw == "" {
		return 0, "is required"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "must be a number"
	}
	return v, ""
}

// Forecast handles GET /v1/air/forecast - the multi-day outlook.
func (h *AirHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	forecast := h.conditions.GetForecast(r.Context())
	response.JSON(w, r, http.StatusOK, models.FromForecast(forecast))
}

// Trend handles GET /v1/air/trend - the trailing 24-hour hourly series.
func (h *AirHandler) Trend(w http.ResponseWriter, r *http.Request) {
	trend := h.conditions.GetTrend(r.Context())
	response.JSON(w, r, http.StatusOK, models.FromTrend(trend))
}

// History handles GET /v1/air/history - the daily historical series.
func (h *AirHandler) History(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Validation(w, r, "invalid query parameters", []models.FieldError{
				{Field: "days", Message: "must be an integer", Code: "invalid"},
			})
			return
		}
		days = parsed
	}

	series := h.conditions.History(days)
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"days": models.FromHistory(series),
	})
}

// Categories handles GET /v1/air/categories - the AQI legend table.
func (h *AirHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := airquality.Categories()
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.FromCategory(c))
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"categories": out,
	})
}

// GetRefreshState handles GET /v1/air/refresh - the refresh loop state.
func (h *AirHandler) GetRefreshState(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.FromRefreshState(h.scheduler.State()))
}

// TriggerRefresh handles POST /v1/air/refresh - start a manual refresh.
// A refresh already in flight is a conflict, not a queue. Fetch failures do
// not surface here; they degrade to the fallback set and the returned state
// carries the error detail.
func (h *AirHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.TriggerNow(r.Context()); err != nil {
		if errors.Is(err, airquality.ErrRefreshInFlight) {
			response.Fail(w, r, http.StatusConflict, "a refresh is already in flight")
			return
		}
		response.Fail(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromRefreshState(h.scheduler.State()))
}

// SetAutoRefresh handles PUT /v1/air/refresh/auto - toggle the refresh loop.
func (h *AirHandler) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var input models.AutoRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.scheduler.SetAutoRefresh(input.Enabled)
	response.JSON(w, r, http.StatusOK, models.FromRefreshState(h.scheduler.State()))
}
