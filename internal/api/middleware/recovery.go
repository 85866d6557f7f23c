package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/api/models"
)

// Recovery returns a middleware that recovers from panics and answers with a
// problem response carrying the request ID.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				// net/http aborts handlers with this sentinel; it must reach
				// the server, not become a logged 500.
				if v == http.ErrAbortHandler {
					panic(v)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("recovered from handler panic")

				problem := models.NewProblem(http.StatusInternalServerError, "an unexpected error occurred")
				problem.TraceID = requestID
				problem.Instance = r.URL.Path
				problem.Send(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
