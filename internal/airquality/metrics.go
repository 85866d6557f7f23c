package airquality

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/airwise/airwise/internal/airquality"

// domainMetrics holds the instruments for refresh cycles and the conditions
// cache. Instruments come from the global meter, so they are no-ops until
// telemetry is initialized.
type domainMetrics struct {
	refreshDuration metric.Float64Histogram
	refreshTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	staleServed     metric.Int64Counter
}

func newDomainMetrics() *domainMetrics {
	meter := otel.Meter(meterName)

	refreshDuration, err := meter.Float64Histogram(
		"airquality.refresh.duration",
		metric.WithDescription("Duration of location refresh cycles in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	refreshTotal, err := meter.Int64Counter(
		"airquality.refresh.total",
		metric.WithDescription("Total number of location refresh cycles"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	cacheHits, err := meter.Int64Counter(
		"airquality.conditions.cache.hit",
		metric.WithDescription("Number of conditions requests served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	cacheMisses, err := meter.Int64Counter(
		"airquality.conditions.cache.miss",
		metric.WithDescription("Number of conditions requests that refreshed through the provider"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	staleServed, err := meter.Int64Counter(
		"airquality.conditions.stale_served",
		metric.WithDescription("Number of stale conditions served after a provider error"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &domainMetrics{
		refreshDuration: refreshDuration,
		refreshTotal:    refreshTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		staleServed:     staleServed,
	}
}

// recordRefresh records one refresh cycle. fallback marks cycles where the
// provider failed and the fixed set was substituted.
func (m *domainMetrics) recordRefresh(ctx context.Context, d time.Duration, fallback bool) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.refreshDuration.Record(ctx, d.Seconds(), attrs)
	m.refreshTotal.Add(ctx, 1, attrs)
}

func (m *domainMetrics) recordCacheHit(ctx context.Context) {
	m.cacheHits.Add(ctx, 1)
}

func (m *domainMetrics) recordCacheMiss(ctx context.Context) {
	m.cacheMisses.Add(ctx, 1)
}

func (m *domainMetrics) recordStaleServed(ctx context.Context) {
	m.staleServed.Add(ctx, 1)
}
