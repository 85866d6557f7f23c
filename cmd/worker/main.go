// Package main provides the entrypoint for the AirWise background worker.
package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality/openweathermap"
	"github.com/airwise/airwise/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "airwise-worker"

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load(".env")

	log := newLogger()
	log.Info().Str("build_time", BuildTime).Msg("starting AirWise worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENWEATHER_API_KEY not set - warm fetches will fail")
	}

	owm := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENWEATHER_BASE_URL"),
		Logger:  log,
	})

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Config:    worker.DefaultWarmConfig(),
		Logger:    log,
		Pollution: owm,
		Weather:   owm,
	})

	// The container platform probes this endpoint and restarts the
	// worker when it stops answering.
	server := healthServer(log, warmJob)

	// Process Pub/Sub jobs when configured, warm on a timer otherwise
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if projectID != "" {
		subscription := getEnvOrDefault("PUBSUB_SUBSCRIPTION", "airwise-worker-jobs")

		consumer, err := worker.NewJobConsumer(ctx, worker.ConsumerConfig{
			ProjectID:    projectID,
			Subscription: subscription,
			WarmJob:      warmJob,
			Logger:       log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job consumer")
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub receive error")
			}
		}()
	} else {
		interval := envDuration("WARM_INTERVAL", 5*time.Minute, log)
		log.Info().Dur("interval", interval).Msg("pubsub not configured, warming on a timer")
		go warmLoop(ctx, log, warmJob, interval)
	}

	<-ctx.Done()
	log.Info().Msg("shutting down worker")

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
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

// healthServer starts the liveness endpoint in the background and
// returns the server so main can drain it on shutdown.
func healthServer(log zerolog.Logger, warmJob *worker.WarmJob) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"metrics": warmJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:              ":" + getEnvOrDefault("APP_PORT", "8080"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	return server
}

// warmLoop warms once immediately, then on every tick until the
// context is canceled.
func warmLoop(ctx context.Context, log zerolog.Logger, warmJob *worker.WarmJob, interval time.Duration) {
	warm := func() {
		_ = warmJob.Run(ctx)
		if err := warmJob.WarmCity(ctx); err != nil {
			log.Warn().Err(err).Msg("city weather warm failed")
		}
	}

	// First requests after a deploy should hit warm caches.
	warm()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			warm()
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration, log zerolog.Logger) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
