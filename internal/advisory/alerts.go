package advisory

import (
	"fmt"
	"time"
)

// Severity grades an alert.
type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeveritySevere   Severity = "severe"
)

// Alert is a health advisory issued for the city.
type Alert struct {
	ID       string
	Severity Severity
	Title    string
	Message  string
	IssuedAt time.Time
}

// BuildAlerts derives the active alerts for the given city AQI. Clean air
// (AQI 150 or below) produces no alerts.
func BuildAlerts(aqi int, now time.Time) []Alert {
	var alerts []Alert

	switch {
	case aqi > 300:
		alerts = append(alerts, Alert{
			ID:       "1",
			Severity: SeveritySevere,
			Title:    "Hazardous Air Quality Alert",
			Message:  "AQI has reached hazardous levels in parts of Gurugram. Avoid all outdoor activities.",
			IssuedAt: now,
		})
	case aqi > 200:
		alerts = append(alerts, Alert{
			ID:       "1",
			Severity: SeverityHigh,
			Title:    "Very Unhealthy Air Quality",
			Message:  "Air quality is very unhealthy in Gurugram. Limit outdoor activities.",
			IssuedAt: now,
		})
	case aqi > 150:
		alerts = append(alerts, Alert{
			ID:       "1",
			Severity: SeverityHigh,
			Title:    "Unhealthy Air Quality",
			Message:  "Air quality is unhealthy. Sensitive groups should avoid outdoor activities.",
			IssuedAt: now,
		})
	default:
		return nil
	}

	alerts = append(alerts, Alert{
		ID:       "2",
		Severity: SeverityHigh,
		Title:    "Current Air Quality Information",
		Message:  fmt.Sprintf("Current AQI in Gurugram is %d. Take necessary precautions.", aqi),
		IssuedAt: now.Add(-time.Hour),
	})

	return alerts
}

// FallbackAlerts is the fixed advisory pair served when no current reading is
// available.
func FallbackAlerts(now time.Time) []Alert {
	return []Alert{
		{
			ID:       "1",
			Severity: SeveritySevere,
			Title:    "Hazardous Air Quality Alert",
			Message:  "AQI has reached hazardous levels in parts of Gurugram.",
			IssuedAt: now.Add(-time.Hour),
		},
		{
			ID:       "2",
			Severity: SeverityHigh,
			Title:    "High Pollution Warning",
			Message:  "Elevated pollution levels expected throughout the day.",
			IssuedAt: now.Add(-3 * time.Hour),
		},
	}
}
