package advisory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwise/airwise/internal/advisory"
)

func TestBuildAlerts_Hazardous(t *testing.T) {
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	alerts := advisory.BuildAlerts(320, now)
	require.Len(t, alerts, 2)

	assert.Equal(t, "1", alerts[0].ID)
	assert.Equal(t, advisory.SeveritySevere, alerts[0].Severity)
	assert.Equal(t, "Hazardous Air Quality Alert", alerts[0].Title)
	assert.Equal(t, "AQI has reached hazardous levels in parts of Gurugram. Avoid all outdoor activities.", alerts[0].Message)
	assert.Equal(t, now, alerts[0].IssuedAt)

	assert.Equal(t, "2", alerts[1].ID)
	assert.Equal(t, advisory.SeverityHigh, alerts[1].Severity)
	assert.Equal(t, "Current Air Quality Information", alerts[1].Title)
	assert.Equal(t, "Current AQI in Gurugram is 320. Take necessary precautions.", alerts[1].Message)
	assert.Equal(t, now.Add(-time.Hour), alerts[1].IssuedAt)
}

func TestBuildAlerts_Bands(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		aqi      int
		title    string
		severity advisory.Severity
	}{
		{name: "just above unhealthy threshold", aqi: 151, title: "Unhealthy Air Quality", severity: advisory.SeverityHigh},
		{name: "unhealthy", aqi: 185, title: "Unhealthy Air Quality", severity: advisory.SeverityHigh},
		{name: "just above very unhealthy threshold", aqi: 201, title: "Very Unhealthy Air Quality", severity: advisory.SeverityHigh},
		{name: "very unhealthy", aqi: 280, title: "Very Unhealthy Air Quality", severity: advisory.SeverityHigh},
		{name: "just above hazardous threshold", aqi: 301, title: "Hazardous Air Quality Alert", severity: advisory.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := advisory.BuildAlerts(tt.aqi, now)
			require.Len(t, alerts, 2)
			assert.Equal(t, tt.title, alerts[0].Title)
			assert.Equal(t, tt.severity, alerts[0].Severity)
		})
	}
}

func TestBuildAlerts_CleanAir(t *testing.T) {
	now := time.Now()

	for _, aqi := range []int{0, 42, 100, 150} {
		assert.Empty(t, advisory.BuildAlerts(aqi, now), "aqi %d should raise no alerts", aqi)
	}
}

func TestFallbackAlerts(t *testing.T) {
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	alerts := advisory.FallbackAlerts(now)
	require.Len(t, alerts, 2)

	assert.Equal(t, "1", alerts[0].ID)
	assert.Equal(t, advisory.SeveritySevere, alerts[0].Severity)
	assert.Equal(t, "Hazardous Air Quality Alert", alerts[0].Title)
	assert.Equal(t, "AQI has reached hazardous levels in parts of Gurugram.", alerts[0].Message)
	assert.Equal(t, now.Add(-time.Hour), alerts[0].IssuedAt)

	assert.Equal(t, "2", alerts[1].ID)
	assert.Equal(t, advisory.SeverityHigh, alerts[1].Severity)
	assert.Equal(t, "High Pollution Warning", alerts[1].Title)
	assert.Equal(t, "Elevated pollution levels expected throughout the day.", alerts[1].Message)
	assert.Equal(t, now.Add(-3*time.Hour), alerts[1].IssuedAt)
}
