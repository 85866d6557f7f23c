package middleware_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/airwise/airwise/internal/api/middleware"
)

// logLine routes one request through the logging middleware and parses
// the emitted line.
func logLine(t *testing.T, req *http.Request, h http.HandlerFunc) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	middleware.Logger(zerolog.New(&buf))(h).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_EmitsOneLinePerRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/air/current", nil)
	req.Header.Set("User-Agent", "airwise-dashboard/2.1")

	body := `{"aqi":312}`
	entry := logLine(t, req, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/air/current", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(len(body)), entry["bytes"])
	assert.Equal(t, "airwise-dashboard/2.1", entry["user_agent"])
	assert.Contains(t, entry, "duration")
}

func TestLogger_RecordsFailureStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/air/refresh", nil)

	entry := logLine(t, req, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(http.StatusServiceUnavailable), entry["status"])
}

func TestLogger_ImplicitStatusIsOK(t *testing.T) {
	// Body write without WriteHeader.
	withBody := logLine(t, httptest.NewRequest(http.MethodGet, "/v1/air/trend", nil),
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
	assert.Equal(t, float64(http.StatusOK), withBody["status"])

	// No write at all, matching the server's implicit 200.
	silent := logLine(t, httptest.NewRequest(http.MethodGet, "/v1/air/trend", nil),
		func(http.ResponseWriter, *http.Request) {})
	assert.Equal(t, float64(http.StatusOK), silent["status"])
}

func TestLogger_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.RequestID(
		middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/alerts", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	requestID, ok := entry["request_id"].(string)
	require.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_CarriesTraceContext(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	handler := middleware.Tracing()(
		middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/alerts", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	traceID, _ := entry["trace_id"].(string)
	assert.Len(t, traceID, 32)
	spanID, _ := entry["span_id"].(string)
	assert.Len(t, spanID, 16)
}

func TestLogger_OmitsTraceFieldsWithoutSpan(t *testing.T) {
	entry := logLine(t, httptest.NewRequest(http.MethodGet, "/healthz", nil),
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

// hijackableRecorder lets the middleware chain be probed for hijack
// passthrough without a real server socket.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	c1, c2 := net.Pipe()
	_ = c2.Close()
	return c1, bufio.NewReadWriter(bufio.NewReader(c1), bufio.NewWriter(c1)), nil
}

func TestLogger_HijackReachesUnderlyingWriter(t *testing.T) {
	var buf bytes.Buffer
	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}

	handler := middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "wrapped writer must support hijacking for the live stream")
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/air/live", nil))

	assert.True(t, rec.hijacked)
}
