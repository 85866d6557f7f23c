package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/api/response"
	"github.com/airwise/airwise/internal/prefs"
)

// PreferencesService stores and retrieves per-user preferences.
type PreferencesService interface {
	Get(ctx context.Context, userID string) (*prefs.Preferences, error)
	Create(ctx context.Context, p *prefs.Preferences) (*prefs.Preferences, error)
	Update(ctx context.Context, userID string, p *prefs.Preferences) (*prefs.Preferences, error)
}

// PreferencesHandler handles user preference endpoints.
type PreferencesHandler struct {
	service PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(service PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

// Get handles GET /v1/preferences/{userID} - a user's settings. Users that
// have never saved any get the defaults.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Fail(w, r, http.StatusBadRequest, "userID is required")
		return
	}

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		response.Fail(w, r, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromPreferences(p))
}

// Create handles POST /v1/preferences - store settings for a new user.
func (h *PreferencesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if input.UserID == "" {
		response.Validation(w, r, "invalid preferences", []models.FieldError{
			{Field: "userId", Message: "is required", Code: "required"},
		})
		return
	}
	if fieldErrors := validatePreferences(input); len(fieldErrors) > 0 {
		response.Validation(w, r, "invalid preferences", fieldErrors)
		return
	}

	saved, err := h.service.Create(r.Context(), input.ToPreferences())
	if err != nil {
		response.Fail(w, r, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	location := fmt.Sprintf("/v1/preferences/%s", saved.UserID)
	response.Created(w, r, location, models.FromPreferences(saved))
}

// Put handles PUT /v1/preferences/{userID} - replace a user's settings.
// The payload must name the same user as the path.
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Fail(w, r, http.StatusBadRequest, "userID is required")
		return
	}

	var input models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fieldErrors := validatePreferences(input)
	if input.UserID != userID {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "userId",
			Message: "must match the userID in the path",
			Code:    "mismatch",
		})
	}
	if len(fieldErrors) > 0 {
		response.Validation(w, r, "invalid preferences", fieldErrors)
		return
	}

	saved, err := h.service.Update(r.Context(), userID, input.ToPreferences())
	if err != nil {
		response.Fail(w, r, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromPreferences(saved))
}

// validatePreferences checks the enum-valued fields. Empty values are
// rejected too: a PUT replaces the whole record, so every field must be set.
func validatePreferences(p models.Preferences) []models.FieldError {
	var fieldErrors []models.FieldError
	if !prefs.ValidAlertThreshold(p.AlertThreshold) {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "alertThreshold",
			Message: "must be one of: " + strings.Join(prefs.AlertThresholds, ", "),
			Code:    "invalid",
		})
	}
	if !prefs.ValidSensitivityProfile(p.SensitivityProfile) {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "sensitivityProfile",
			Message: "must be one of: " + strings.Join(prefs.SensitivityProfiles, ", "),
			Code:    "invalid",
		})
	}
	return fieldErrors
}
