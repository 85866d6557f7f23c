package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/airquality"
	"github.com/airwise/airwise/internal/airquality/gurugram"
	"github.com/airwise/airwise/internal/weather"
)

// PollutionSource fetches a current pollution sample for a point.
type PollutionSource interface {
	GetCurrentPollution(ctx context.Context, lat, lon float64) (*airquality.PollutionSample, error)
}

// WeatherSource fetches a current weather observation for a point.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// WarmJob fetches current readings for every monitored area so provider
// circuit breakers stay exercised and the first request after a deploy is
// served from warm upstream caches.
type WarmJob struct {
	config WarmConfig
	logger zerolog.Logger

	// Sources (optional, nil if not configured)
	pollution PollutionSource
	weather   WeatherSource

	// Metrics
	metrics *WarmMetrics
}

// WarmMetrics tracks warm job statistics.
type WarmMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns        int64
	WarmedTargets    int64
	FailedTargets    int64
	PollutionFetches int64
	WeatherFetches   int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration

	// Worst reading seen on the last run
	LastMaxAQI    int
	LastWorstArea string
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config    WarmConfig
	Logger    zerolog.Logger
	Pollution PollutionSource
	Weather   WeatherSource
}

// NewWarmJob creates a new warm job processor.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultWarmConfig()
	}

	return &WarmJob{
		config:    config,
		logger:    cfg.Logger,
		pollution: cfg.Pollution,
		weather:   cfg.Weather,
		metrics:   &WarmMetrics{},
	}
}

// WarmResult contains the result of one warm run.
type WarmResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalTargets int
	Warmed       int
	Failed       int
	Errors       []WarmError

	// MaxAQI and WorstArea describe the worst reading seen this run.
	MaxAQI    int
	WorstArea string
}

// WarmError represents a failed fetch for one area.
type WarmError struct {
	Area  string
	Error string
}

// Run warms all configured targets.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime:    startTime,
		TotalTargets: j.config.TotalTargets(),
	}

	j.logger.Info().
		Int("total_targets", result.TotalTargets).
		Int("concurrency", j.config.Concurrency).
		Msg("starting reading warm job")

	// Create work channels
	targetsChan := make(chan WarmTarget, len(j.config.Targets))
	resultsChan := make(chan targetResult, len(j.config.Targets))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, targetsChan, resultsChan)
		}()
	}

	// Send targets to workers
	for _, t := range j.config.Targets {
		targetsChan <- t
	}
	close(targetsChan)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	for tr := range resultsChan {
		if tr.success {
			result.Warmed++
		} else {
			result.Failed++
		}
		if tr.aqi > result.MaxAQI {
			result.MaxAQI = tr.aqi
			result.WorstArea = tr.target.Name
		}
		result.Errors = append(result.Errors, tr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	// Update metrics
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("failed", result.Failed).
		Int("max_aqi", result.MaxAQI).
		Str("worst_area", result.WorstArea).
		Msg("reading warm job completed")

	return result
}

type targetResult struct {
	target  WarmTarget
	success bool
	aqi     int
	errors  []WarmError
}

func (j *WarmJob) warmWorker(ctx context.Context, targets <-chan WarmTarget, results chan<- targetResult) {
	for target := range targets {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.warmTarget(ctx, target)
		}
	}
}

func (j *WarmJob) warmTarget(ctx context.Context, target WarmTarget) targetResult {
	result := targetResult{
		target:  target,
		success: true,
	}

	// Create timeout context for this target
	targetCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.WarmPollution && j.pollution != nil {
		sample, err := j.pollution.GetCurrentPollution(targetCtx, target.Lat, target.Lon)
		if err != nil {
			result.errors = append(result.errors, WarmError{
				Area:  target.Name,
				Error: err.Error(),
			})
			result.success = false
		} else {
			result.aqi = airquality.StandardAQI(sample.Index, sample.Components.PM25)
			atomic.AddInt64(&j.metrics.PollutionFetches, 1)
		}
	}

	return result
}

// WarmCity fetches the city weather observation.
// Weather is city-level, so a single fetch covers every area.
func (j *WarmJob) WarmCity(ctx context.Context) error {
	if !j.config.WarmWeather || j.weather == nil {
		return nil
	}

	j.logger.Debug().Msg("warming city weather")

	obs, err := j.weather.GetCurrentWeather(ctx, gurugram.CityLat, gurugram.CityLon)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to warm city weather")
		return err
	}

	atomic.AddInt64(&j.metrics.WeatherFetches, 1)
	j.logger.Debug().
		Float64("temperature_c", obs.Temperature).
		Str("wind", obs.WindDirection()).
		Msg("city weather warmed")
	return nil
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.WarmedTargets += int64(result.Warmed)
	j.metrics.FailedTargets += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
	j.metrics.LastMaxAQI = result.MaxAQI
	j.metrics.LastWorstArea = result.WorstArea
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmJob) GetMetrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:        j.metrics.TotalRuns,
		WarmedTargets:    j.metrics.WarmedTargets,
		FailedTargets:    j.metrics.FailedTargets,
		PollutionFetches: j.metrics.PollutionFetches,
		WeatherFetches:   j.metrics.WeatherFetches,
		LastRunAt:        j.metrics.LastRunAt,
		LastRunDuration:  j.metrics.LastRunDuration,
		TotalDuration:    j.metrics.TotalDuration,
		LastMaxAQI:       j.metrics.LastMaxAQI,
		LastWorstArea:    j.metrics.LastWorstArea,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"warmed_targets":    m.WarmedTargets,
		"failed_targets":    m.FailedTargets,
		"pollution_fetches": m.PollutionFetches,
		"weather_fetches":   m.WeatherFetches,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
		"last_max_aqi":      m.LastMaxAQI,
		"last_worst_area":   m.LastWorstArea,
	}
}
