package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/airwise/airwise/internal/api/middleware"

// Metrics is the server's request instrument set. One instance is
// shared by every route.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics builds the instrument set on the current global meter
// provider, so it must run after telemetry is initialized.
func NewMetrics() (*Metrics, error) {
	var (
		meter = otel.Meter(meterName)
		m     Metrics
		err   error
	)

	if m.requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent serving a request"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("request duration histogram: %w", err)
	}

	if m.requestTotal, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served, by method, route and status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("request counter: %w", err)
	}

	if m.requestsInFlight, err = meter.Int64UpDownCounter("http.server.requests_in_flight",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("in-flight gauge: %w", err)
	}

	if m.responseSize, err = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("Response body size"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("response size histogram: %w", err)
	}

	return &m, nil
}

// Middleware records duration, count and response size per request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The route pattern is only known after routing, so the in-flight
			// counter carries the method alone.
			inFlight := metric.WithAttributes(attribute.String("http.method", r.Method))
			m.requestsInFlight.Add(r.Context(), 1, inFlight)
			defer m.requestsInFlight.Add(r.Context(), -1, inFlight)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := statusOf(ww)

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.String("http.status_code", strconv.Itoa(status)),
			}
			if status >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			m.responseSize.Record(r.Context(), int64(ww.BytesWritten()), metric.WithAttributes(attrs...))
		})
	}
}

// routePattern returns the chi route pattern when the request was routed,
// falling back to the raw path. Patterns keep the route label bounded by
// the route table instead of growing with every distinct URL.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// statusOf reads the captured status, defaulting to 200 the way the
// server itself does for handlers that never call WriteHeader.
func statusOf(ww chimiddleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
