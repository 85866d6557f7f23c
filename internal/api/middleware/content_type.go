package middleware

import (
	"net/http"
	"strings"

	"github.com/airwise/airwise/internal/api/models"
)

// ContentTypeJSON sets a JSON Content-Type before the handler runs. Handlers
// that answer with something else (problem responses, the live stream
// upgrade) overwrite or ignore it.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects bodied requests whose declared Content-Type is not
// JSON. Requests without a Content-Type pass, the decoder rejects anything
// unreadable anyway.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				problem := models.NewProblem(
					http.StatusUnsupportedMediaType,
					"Request bodies must be application/json",
				)
				problem.TraceID = GetRequestID(r.Context())
				problem.Instance = r.URL.Path
				problem.Send(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
