package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// scopeName is the instrumentation scope reported on every span.
const scopeName = "github.com/airwise/airwise/internal/api/middleware"

// Tracing opens a server span per request, honoring trace context from
// incoming headers. The span starts under the raw path and is renamed
// to the chi route pattern once routing has happened, so span names
// stay bounded by the route table.
func Tracing() func(http.Handler) http.Handler {
	tracer := otel.Tracer(scopeName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(
				r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttrs(ctx, r)...),
			)
			defer span.End()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// http.route only carries real patterns. Unrouted requests keep
			// their raw-path span name and no route attribute.
			if pattern := routePattern(r); pattern != r.URL.Path {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(semconv.HTTPRoute(pattern))
			}

			status := statusOf(ww)
			span.SetAttributes(
				semconv.HTTPResponseStatusCode(status),
				semconv.HTTPResponseBodySize(ww.BytesWritten()),
			)
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}

// requestAttrs carries what is known before routing. The route pattern
// and response fields land on the span afterwards.
func requestAttrs(ctx context.Context, r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.URLScheme(scheme(r)),
		semconv.URLPath(r.URL.Path),
		semconv.URLQuery(r.URL.RawQuery),
		semconv.ServerAddress(r.Host),
		semconv.ClientAddress(r.RemoteAddr),
		semconv.UserAgentOriginal(r.UserAgent()),
	}
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, attribute.String("request.id", id))
	}
	return attrs
}

// scheme resolves what protocol the client spoke, trusting the load
// balancer's X-Forwarded-Proto for terminated TLS.
func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		return forwarded
	}
	return "http"
}
