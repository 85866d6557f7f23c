package airquality

import (
	"context"
	"sort"
	"time"
)

// PollutantMeans are mean concentrations for the charted pollutants.
type PollutantMeans struct {
	PM25 float64
	PM10 float64
	O3   float64
	NO2  float64
}

// ForecastDay is one aggregated day of the pollution outlook.
type ForecastDay struct {
	Date       string // "Mon, Jan 02"
	AQIMax     int
	AQIMin     int
	Category   Category // band of the daily peak
	Pollutants PollutantMeans
}

// Forecast is the multi-day outlook.
type Forecast struct {
	Days      []ForecastDay
	Fallback  bool
	FetchedAt time.Time
}

// TrendHour is one hour of the 24-hour trend.
type TrendHour struct {
	Clock string // "15:04"
	Hour  string // "15"
	AQI   int
	PM25  float64
}

// Trend is the trailing 24-hour hourly series.
type Trend struct {
	Hours     []TrendHour
	Fallback  bool
	FetchedAt time.Time
}

// HistoryDay is one day of the historical series, newest first.
type HistoryDay struct {
	Date       string // "2006-01-02"
	AQI        int
	Pollutants PollutantMeans
}

// forecastHorizonDays bounds the outlook to a week including today.
const forecastHorizonDays = 6

// GetForecast returns the daily outlook, aggregated from hourly provider
// samples. Provider failure or an empty series degrades to the synthesized
// profile, flagged as fallback and never cached.
func (s *Service) GetForecast(ctx context.Context) *Forecast {
	s.mu.RLock()
	if s.forecast != nil && time.Now().Before(s.forecastExpiry) {
		f := s.forecast
		s.mu.RUnlock()
		return f
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forecast != nil && time.Now().Before(s.forecastExpiry) {
		return s.forecast
	}

	now := time.Now()
	samples, err := s.provider.FetchForecast(ctx)
	if err != nil || len(samples) == 0 {
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to fetch forecast samples")
		}
		return &Forecast{Days: synthesizedForecast(now), Fallback: true, FetchedAt: now}
	}

	days := aggregateForecastDays(samples, now)
	if len(days) == 0 {
		return &Forecast{Days: synthesizedForecast(now), Fallback: true, FetchedAt: now}
	}

	s.forecast = &Forecast{Days: days, FetchedAt: now}
	s.forecastExpiry = now.Add(s.outlookTTL)

	s.logger.Info().Int("days", len(days)).Msg("forecast refreshed")
	return s.forecast
}

// GetTrend returns the trailing 24-hour hourly series from the provider's
// history feed, thinned to at most one sample per hour. Provider failure
// degrades to the synthesized profile, flagged and never cached.
func (s *Service) GetTrend(ctx context.Context) *Trend {
	s.mu.RLock()
	if s.trend != nil && time.Now().Before(s.trendExpiry) {
		t := s.trend
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trend != nil && time.Now().Before(s.trendExpiry) {
		return s.trend
	}

	now := time.Now()
	samples, err := s.provider.FetchHistory(ctx, now.Add(-24*time.Hour), now)
	if err != nil || len(samples) == 0 {
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to fetch trend samples")
		}
		return &Trend{Hours: synthesizedTrend(now), Fallback: true, FetchedAt: now}
	}

	s.trend = &Trend{Hours: buildTrendHours(samples), FetchedAt: now}
	s.trendExpiry = now.Add(s.outlookTTL)

	s.logger.Info().Int("hours", len(s.trend.Hours)).Msg("hourly trend refreshed")
	return s.trend
}

// History returns the daily series for the trailing period, newest first.
// The upstream free tier exposes no long-range archive, so the series is a
// deterministic profile shaped like the city's seasonal pattern. Days
// defaults to 30 and caps at 90.
func (s *Service) History(days int) []HistoryDay {
	if days <= 0 {
		days = 30
	}
	if days > 90 {
		days = 90
	}
	return synthesizedHistory(time.Now(), days)
}

// aggregateForecastDays groups hourly samples by calendar day, keeping at
// most a week from today, and reduces each day to its AQI extremes and mean
// concentrations.
func aggregateForecastDays(samples []PollutionSample, now time.Time) []ForecastDay {
	type dayAgg struct {
		day    time.Time
		aqiMin int
		aqiMax int
		sums   PollutantMeans
		count  int
	}

	today := truncateToDay(now)
	byDay := make(map[string]*dayAgg)

	for _, smp := range samples {
		day := truncateToDay(smp.At)
		offset := int(day.Sub(today).Hours() / 24)
		if offset > forecastHorizonDays {
			continue
		}

		key := day.Format("2006-01-02")
		agg, ok := byDay[key]
		if !ok {
			agg = &dayAgg{day: day, aqiMin: int(^uint(0) >> 1)}
			byDay[key] = agg
		}

		aqi := StandardAQI(smp.Index, smp.Components.PM25)
		if aqi > agg.aqiMax {
			agg.aqiMax = aqi
		}
		if aqi < agg.aqiMin {
			agg.aqiMin = aqi
		}
		agg.sums.PM25 += smp.Components.PM25
		agg.sums.PM10 += smp.Components.PM10
		agg.sums.O3 += smp.Components.O3
		agg.sums.NO2 += smp.Components.NO2
		agg.count++
	}

	days := make([]*dayAgg, 0, len(byDay))
	for _, agg := range byDay {
		days = append(days, agg)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].day.Before(days[b].day) })

	out := make([]ForecastDay, 0, len(days))
	for _, agg := range days {
		n := float64(agg.count)
		out = append(out, ForecastDay{
			Date:     agg.day.Format("Mon, Jan 02"),
			AQIMax:   agg.aqiMax,
			AQIMin:   agg.aqiMin,
			Category: CategoryFor(float64(agg.aqiMax)),
			Pollutants: PollutantMeans{
				PM25: agg.sums.PM25 / n,
				PM10: agg.sums.PM10 / n,
				O3:   agg.sums.O3 / n,
				NO2:  agg.sums.NO2 / n,
			},
		})
	}
	return out
}

// buildTrendHours converts history samples to trend entries, keeping the
// most recent sample per clock hour and at most 24 entries, in
// chronological order.
func buildTrendHours(samples []PollutionSample) []TrendHour {
	hours := make([]TrendHour, 0, len(samples))
	for _, smp := range samples {
		hours = append(hours, TrendHour{
			Clock: smp.At.Format("15:04"),
			Hour:  smp.At.Format("15"),
			AQI:   StandardAQI(smp.Index, smp.Components.PM25),
			PM25:  smp.Components.PM25,
		})
	}

	if len(hours) <= 24 {
		return hours
	}

	seen := make(map[string]bool, 24)
	thinned := make([]TrendHour, 0, 24)
	for i := len(hours) - 1; i >= 0 && len(thinned) < 24; i-- {
		if seen[hours[i].Hour] {
			continue
		}
		seen[hours[i].Hour] = true
		thinned = append(thinned, hours[i])
	}

	// Collected newest-first; put back in chronological order.
	for i, j := 0, len(thinned)-1; i < j; i, j = i+1, j-1 {
		thinned[i], thinned[j] = thinned[j], thinned[i]
	}
	return thinned
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
