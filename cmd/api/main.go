// Package main provides the entrypoint for the AirWise API server.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/advisory"
	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/airquality/gurugram"
	"github.com/airwise/airwise/internal/airquality/openweathermap"
	"github.com/airwise/airwise/internal/api"
	"github.com/airwise/airwise/internal/api/middleware"
	"github.com/airwise/airwise/internal/prefs"
	"github.com/airwise/airwise/internal/provider/resilience"
	"github.com/airwise/airwise/internal/telemetry"
	"github.com/airwise/airwise/internal/weather"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "airwise-api"

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load(".env")

	log := newLogger()
	log.Info().Str("build_time", BuildTime).Msg("starting AirWise API")

	// Interrupts cancel this context, which winds down the refresh
	// scheduler along with everything else holding it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer initTelemetry(ctx, log)()

	// Serving without request metrics beats not serving at all.
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("request metrics disabled")
	}

	// OpenWeatherMap client behind a registered circuit breaker
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENWEATHER_API_KEY not set - upstream fetches will fail and fallback readings will serve")
	}

	registry := resilience.NewRegistry()
	upstream := resilience.NewClient(resilience.DefaultClientConfig(openweathermap.ProviderName))
	registry.Register(openweathermap.ProviderName, upstream)

	owm := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     apiKey,
		BaseURL:    os.Getenv("OPENWEATHER_BASE_URL"),
		HTTPClient: upstream,
		Health:     registry,
		Logger:     log,
	})

	// Weather service caches the city observation
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: owm,
		Logger:   log,
	})

	// Gurugram provider spreads the city reading over the monitored areas
	areaProvider := gurugram.NewProvider(gurugram.ProviderConfig{
		Pollution: owm,
		Weather:   weatherService,
		Logger:    log,
	})

	// Scheduler keeps the per-area snapshot fresh
	scheduler := airquality.NewScheduler(airquality.SchedulerConfig{
		Provider:     areaProvider,
		BeforeManual: weatherService.Forget,
		Logger:       log,
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()
	log.Info().Msg("refresh scheduler started")

	// City-level conditions, forecast, trend and history
	conditions := airquality.NewService(airquality.ServiceConfig{
		Provider: areaProvider,
		Logger:   log,
	})

	// Alerts, recommendations and the hotspot map
	advisories := advisory.NewService(advisory.ServiceConfig{
		Conditions: conditions,
		Snapshots:  scheduler,
		Weather:    weatherService,
		Logger:     log,
	})

	// User preferences
	preferences := prefs.NewService(prefs.NewMemoryRepository())

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Conditions:  conditions,
		Scheduler:   scheduler,
		Advisories:  advisories,
		Preferences: preferences,
		Providers:   registry,
	})

	serve(ctx, log, ":"+getEnvOrDefault("APP_PORT", "8080"), router)
}

// newLogger builds the process logger. LOG_PRETTY switches to the
// console writer for local development, LOG_LEVEL trims verbosity.
func newLogger() zerolog.Logger {
	out := io.Writer(os.Stdout)
	if os.Getenv("LOG_PRETTY") == "true" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	log := zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if lvl, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")); err == nil {
		log = log.Level(lvl)
	}
	return log
}

// initTelemetry wires the OTLP pipelines and returns the cleanup to
// defer. Failure to reach the collector is fatal only when telemetry
// is explicitly enabled.
func initTelemetry(ctx context.Context, log zerolog.Logger) func() {
	cfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init failed")
	}
	if cfg.Enabled {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("telemetry exporting")
	}

	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(flushCtx); err != nil {
			log.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}
}

// serve runs the HTTP server until the context is canceled or the
// listener fails, then drains in-flight requests.
func serve(ctx context.Context, log zerolog.Logger, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		log.Fatal().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("drain incomplete, closing server")
		_ = srv.Close()
	}

	log.Info().Msg("server stopped")
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
