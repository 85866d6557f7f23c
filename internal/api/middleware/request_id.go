// Package middleware provides HTTP middleware for the AirWise API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// headerRequestID is the wire name for request correlation.
const headerRequestID = "X-Request-Id"

// maxRequestIDLength caps client-supplied request IDs. Longer values are
// replaced, not truncated.
const maxRequestIDLength = 64

type requestIDKey struct{}

// RequestID propagates the client's X-Request-Id or generates one, sets it
// on the response, and stores it in the request context. Client-supplied IDs
// are only kept when short and printable, they end up in logs and problem
// payloads.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if !validRequestID(id) {
			id = "req_" + uuid.NewString()[:22]
		}
		w.Header().Set(headerRequestID, id)

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), requestIDKey{}, id),
		))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

// GetRequestID returns the ID stored by RequestID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
