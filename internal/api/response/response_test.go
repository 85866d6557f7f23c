package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwise/airwise/internal/api/middleware"
	"github.com/airwise/airwise/internal/api/models"
	"github.com/airwise/airwise/internal/api/response"
)

const testRequestID = "req_response_test"

// serve runs fn behind the request ID middleware with a known ID so the
// stamped headers and body fields can be asserted exactly.
func serve(t *testing.T, target string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Request-Id", testRequestID)
	rec := httptest.NewRecorder()
	middleware.RequestID(fn).ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON(t *testing.T) {
	payload := map[string]string{"status": "ok"}

	rec := serve(t, "/v1/air/current", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, payload)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, testRequestID, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, payload, got)
}

func TestJSON_NilBodyWritesHeadersOnly(t *testing.T) {
	rec := serve(t, "/v1/air/refresh", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusAccepted, nil)
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, testRequestID, rec.Header().Get("X-Request-Id"))
	assert.Zero(t, rec.Body.Len())
}

func TestJSON_EncodeFailureBecomesProblem(t *testing.T) {
	rec := serve(t, "/v1/air/current", func(w http.ResponseWriter, r *http.Request) {
		// Channels cannot be marshalled, forcing the encode path to fail
		// before any header is written.
		response.JSON(w, r, http.StatusOK, make(chan int))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "https://api.airwise.in/problems/internal-error", p.Type)
	assert.Equal(t, "response encoding failed", p.Detail)
}

func TestCreated(t *testing.T) {
	rec := serve(t, "/v1/preferences", func(w http.ResponseWriter, r *http.Request) {
		response.Created(w, r, "/v1/preferences/user-1", map[string]string{"userId": "user-1"})
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/preferences/user-1", rec.Header().Get("Location"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "user-1")
}

func TestNoContent(t *testing.T) {
	rec := serve(t, "/v1/preferences/user-1", func(w http.ResponseWriter, r *http.Request) {
		response.NoContent(w, r)
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testRequestID, rec.Header().Get("X-Request-Id"))
	assert.Zero(t, rec.Body.Len())
}

func TestFail(t *testing.T) {
	rec := serve(t, "/v1/preferences/nobody", func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, http.StatusNotFound, "no preferences for that user")
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "https://api.airwise.in/problems/not-found", p.Type)
	assert.Equal(t, "no preferences for that user", p.Detail)
	assert.Equal(t, "/v1/preferences/nobody", p.Instance)
	assert.Equal(t, testRequestID, p.TraceID)
}

func TestValidation(t *testing.T) {
	fields := []models.FieldError{
		{Field: "lat", Message: "must be between -90 and 90", Code: "out_of_range"},
	}

	rec := serve(t, "/v1/air/estimate", func(w http.ResponseWriter, r *http.Request) {
		response.Validation(w, r, "invalid query coordinates", fields)
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "https://api.airwise.in/problems/validation-error", p.Type)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
}

func TestProblem_StampsRequestScope(t *testing.T) {
	rec := serve(t, "/v1/air/live", func(w http.ResponseWriter, r *http.Request) {
		response.Problem(w, r, models.CustomProblem("upgrade-failed", "Upgrade failed", http.StatusBadRequest, ""))
	})

	p := decodeProblem(t, rec)
	assert.Equal(t, "https://api.airwise.in/problems/upgrade-failed", p.Type)
	assert.Equal(t, "/v1/air/live", p.Instance)
	assert.Equal(t, testRequestID, p.TraceID)
}
