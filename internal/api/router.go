// Package api provides the HTTP API for AirWise.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/api/handler"
	"github.com/airwise/airwise/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Conditions  handler.ConditionsService
	Scheduler   handler.RefreshScheduler
	Advisories  handler.AdvisoryService
	Preferences handler.PreferencesService
	Providers   handler.ProviderHealthSource
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airwise-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	airHandler := handler.NewAirHandler(cfg.Conditions, cfg.Scheduler)
	liveHandler := handler.NewLiveHandler(cfg.Scheduler, cfg.Logger)
	advisoryHandler := handler.NewAdvisoryHandler(cfg.Advisories)
	prefsHandler := handler.NewPreferencesHandler(cfg.Preferences)
	opsHandler := handler.NewOpsHandler(serviceName, cfg.Version, cfg.BuildTime, cfg.Scheduler, cfg.Providers)

	// Per-tier rate limiters, keyed by client IP
	readLimit := middleware.RateLimit(middleware.ReadTier)
	estimateLimit := middleware.RateLimit(middleware.EstimateTier)
	writeLimit := middleware.RateLimit(middleware.WriteTier)

	// Ops endpoints (public, unlimited so probes never throttle)
	r.Get("/healthz", opsHandler.Healthz)
	r.Get("/readyz", opsHandler.Readyz)
	r.Get("/version", opsHandler.Version)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/air", func(r chi.Router) {
			r.With(readLimit).Get("/current", airHandler.Current)
			r.With(readLimit).Get("/forecast", airHandler.Forecast)
			r.With(readLimit).Get("/trend", airHandler.Trend)
			r.With(readLimit).Get("/history", airHandler.History)
			r.With(readLimit).Get("/categories", airHandler.Categories)

			// Map feed and point estimates fan work out per request
			r.With(estimateLimit).Get("/locations", airHandler.Locations)
			r.With(estimateLimit).Get("/estimate", airHandler.Estimate)

			// Refresh controls
			r.With(readLimit).Get("/refresh", airHandler.GetRefreshState)
			r.With(writeLimit).Post("/refresh", airHandler.TriggerRefresh)
			r.With(writeLimit).Put("/refresh/auto", airHandler.SetAutoRefresh)

			// Live state stream (WebSocket; limits apply to the upgrade)
			r.With(readLimit).Get("/live", liveHandler.Stream)
		})

		// Advisory endpoints
		r.With(readLimit).Get("/alerts", advisoryHandler.Alerts)
		r.With(readLimit).Get("/recommendations", advisoryHandler.Recommendations)
		r.With(readLimit).Get("/hotspots", advisoryHandler.Hotspots)

		// Preferences
		r.Route("/preferences", func(r chi.Router) {
			r.With(writeLimit).Post("/", prefsHandler.Create)
			r.Route("/{userID}", func(r chi.Router) {
				r.With(readLimit).Get("/", prefsHandler.Get)
				r.With(writeLimit).Put("/", prefsHandler.Put)
			})
		})
	})

	return r
}
