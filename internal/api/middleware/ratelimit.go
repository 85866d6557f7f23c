package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/airwise/airwise/internal/api/models"
)

// RateLimitTier is one requests-per-window budget.
type RateLimitTier struct {
	Limit  int
	Window time.Duration
}

// ReadTier covers the cached read endpoints, EstimateTier the per-point
// interpolation work, WriteTier everything that changes state.
var (
	ReadTier     = RateLimitTier{Limit: 100, Window: time.Minute}
	EstimateTier = RateLimitTier{Limit: 30, Window: time.Minute}
	WriteTier    = RateLimitTier{Limit: 30, Window: time.Minute}
)

// RateLimit builds an IP-keyed limiter for one tier. httprate keeps the
// counters and sets the X-RateLimit-* headers, the limit handler only
// shapes the 429 body.
func RateLimit(tier RateLimitTier) func(http.Handler) http.Handler {
	return httprate.Limit(
		tier.Limit,
		tier.Window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(tier)),
	)
}

// limitExceeded answers a request over budget. Retry-After is the full
// window, the worst case for a client that just exhausted it.
func limitExceeded(tier RateLimitTier) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(tier.Window / time.Second))
	detail := fmt.Sprintf("more than %d requests in %s from this address", tier.Limit, tier.Window)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)

		problem := models.NewProblem(http.StatusTooManyRequests, detail)
		problem.TraceID = GetRequestID(r.Context())
		problem.Instance = r.URL.Path
		problem.Send(w)
	}
}
