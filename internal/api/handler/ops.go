package handler

import (
	"net/http"
	"time"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/api/response"
	"github.com/airwise/airwise/internal/provider/resilience"
)

// SnapshotReporter reports whether a location snapshot exists yet.
type SnapshotReporter interface {
	Snapshot() (airquality.Snapshot, bool)
}

// ProviderHealthSource reports the health of registered upstream providers.
type ProviderHealthSource interface {
	GetAllHealth() []*resilience.ProviderHealth
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	service   string
	version   string
	buildTime string
	snapshots SnapshotReporter
	providers ProviderHealthSource
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(service, version, buildTime string, snapshots SnapshotReporter, providers ProviderHealthSource) *OpsHandler {
	return &OpsHandler{
		service:   service,
		version:   version,
		buildTime: buildTime,
		snapshots: snapshots,
		providers: providers,
	}
}

// Healthz handles GET /healthz - liveness check.
func (h *OpsHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version": h.version,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// Readyz handles GET /readyz - readiness check. The service is ready once
// the first location snapshot exists.
func (h *OpsHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	_, hasSnapshot := h.snapshots.Snapshot()

	status := models.SystemStatus{
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{snapshotStatus(hasSnapshot)},
		Providers:  providerStatuses(h.providers.GetAllHealth()),
	}
	status.Status = overallStatus(status.Subsystems, status.Providers)

	code := http.StatusOK
	if status.Status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, status)
}

// overallStatus rolls the per-part grades into one. Provider trouble
// caps at DEGRADED because reads keep serving from the last snapshot
// while an upstream misbehaves.
func overallStatus(subs []models.SubsystemStatus, providers []models.ProviderStatus) models.HealthStatus {
	overall := models.HealthStatusOK
	for _, s := range subs {
		overall = overall.Worst(s.Status)
	}
	for _, p := range providers {
		if p.Status != models.HealthStatusOK {
			overall = overall.Worst(models.HealthStatusDegraded)
		}
	}
	return overall
}

// Version handles GET /version - build identification.
func (h *OpsHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.VersionInfo{
		Service:   h.service,
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

func snapshotStatus(hasSnapshot bool) models.SubsystemStatus {
	st := models.SubsystemStatus{
		Name:   "snapshot",
		Status: models.HealthStatusOK,
	}
	if !hasSnapshot {
		st.Status = models.HealthStatusFail
		detail := "no location snapshot yet"
		st.Detail = &detail
	}
	return st
}

func providerStatuses(healths []*resilience.ProviderHealth) []models.ProviderStatus {
	out := make([]models.ProviderStatus, 0, len(healths))
	for _, health := range healths {
		st := models.ProviderStatus{
			Provider:            health.Name,
			Status:              models.HealthStatusOK,
			CircuitState:        health.CircuitState.String(),
			ConsecutiveFailures: health.ConsecutiveFailures,
		}
		switch health.Level() {
		case resilience.LevelFailed:
			st.Status = models.HealthStatusFail
		case resilience.LevelDegraded:
			st.Status = models.HealthStatusDegraded
		}
		if health.LastSuccessAt != nil {
			ts := models.Timestamp(*health.LastSuccessAt)
			st.LastSuccessAt = &ts
		}
		if health.LastError != "" {
			msg := health.LastError
			st.Message = &msg
		}
		out = append(out, st)
	}
	return out
}
