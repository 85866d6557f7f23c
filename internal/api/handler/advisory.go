package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/airwise/airwise/internal/advisory"
	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/api/response"
)

// AdvisoryService answers the health advisory queries.
type AdvisoryService interface {
	Alerts(ctx context.Context) []advisory.Alert
	Recommendations(ctx context.Context) []string
	Hotspots(ctx context.Context) (*advisory.HotspotMap, error)
}

// AdvisoryHandler handles alert, recommendation and hotspot endpoints.
type AdvisoryHandler struct {
	advisories AdvisoryService
}

// NewAdvisoryHandler creates a new AdvisoryHandler.
func NewAdvisoryHandler(advisories AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{advisories: advisories}
}

// Alerts handles GET /v1/alerts - active air quality alerts. Clean air means
// an empty list, not a 404.
func (h *AdvisoryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.advisories.Alerts(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"alerts": models.FromAlerts(alerts),
	})
}

// Recommendations handles GET /v1/recommendations - health guidance for the
// current AQI band.
func (h *AdvisoryHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	recs := h.advisories.Recommendations(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
	})
}

// Hotspots handles GET /v1/hotspots - the graded pollution hotspot map.
func (h *AdvisoryHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	hotspots, err := h.advisories.Hotspots(r.Context())
	if err != nil {
		if errors.Is(err, advisory.ErrNoSnapshot) {
			response.Fail(w, r, http.StatusServiceUnavailable, "no location readings available yet")
			return
		}
		response.Fail(w, r, http.StatusInternalServerError, "failed to build hotspot map")
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromHotspotMap(hotspots))
}
