// Package response writes the API's success and error bodies.
//
// Success payloads are encoded into a pooled buffer before any header
// goes out, so an encoding failure becomes a clean 500 problem instead
// of a truncated 200.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/airwise/airwise/internal/api/middleware"
	"github.com/airwise/airwise/internal/api/models"
)

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// JSON encodes v and writes it with the given status. A nil v writes
// headers only.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	stamp(w, r)
	if v == nil {
		w.WriteHeader(status)
		return
	}

	buf := bufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		Fail(w, r, http.StatusInternalServerError, "response encoding failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Created writes a 201 with a Location header for the new resource.
func Created(w http.ResponseWriter, r *http.Request, location string, v any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, v)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	stamp(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Problem stamps the request-scoped fields onto p and writes it.
func Problem(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	p.TraceID = middleware.GetRequestID(r.Context())
	p.Instance = r.URL.Path
	p.Send(w)
}

// Fail writes a catalogued problem for status with the given detail.
func Fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	Problem(w, r, models.NewProblem(status, detail))
}

// Validation writes a 400 whose field errors tell the caller which
// inputs to fix.
func Validation(w http.ResponseWriter, r *http.Request, detail string, fields []models.FieldError) {
	Problem(w, r, models.NewProblem(http.StatusBadRequest, detail).WithFields(fields))
}

// stamp copies the request ID onto the response for correlation.
func stamp(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
}
