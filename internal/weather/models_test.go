package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airwise/airwise/internal/weather"
)

func TestDirectionName(t *testing.T) {
	tests := []struct {
		name     string
		deg      float64
		expected string
	}{
		{"north", 0, "N"},
		{"north high side", 10, "N"},
		{"north-northeast", 22.5, "NNE"},
		{"northeast", 45, "NE"},
		{"east", 90, "E"},
		{"southeast", 135, "SE"},
		{"south", 180, "S"},
		{"southwest", 225, "SW"},
		{"west", 270, "W"},
		{"northwest", 315, "NW"},
		{"north-northwest", 337.5, "NNW"},
		{"wraps to north", 350, "N"},
		{"full circle", 360, "N"},
		{"negative bearing", -45, "NW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.DirectionName(tt.deg))
		})
	}
}

func TestObservation_WindDirection(t *testing.T) {
	obs := &weather.Observation{WindDeg: 50}
	assert.Equal(t, "NE", obs.WindDirection())
}

// Categories change exactly at 1, 3 and 8 m/s. The rows sample each
// side of every boundary.
func TestCategorizeWind(t *testing.T) {
	tests := []struct {
		windSpeed float64
		want      weather.WindCategory
	}{
		{0, weather.WindCalm},
		{0.99, weather.WindCalm},
		{1.0, weather.WindLight},
		{2.99, weather.WindLight},
		{3.0, weather.WindModerate},
		{7.99, weather.WindModerate},
		{8.0, weather.WindStrong},
		{15.0, weather.WindStrong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, weather.CategorizeWind(tt.windSpeed), "wind %.2f m/s", tt.windSpeed)
	}
}

func TestObservation_DispersalConditions(t *testing.T) {
	assert.Equal(t, "poor", (&weather.Observation{WindSpeed: 0.5}).DispersalConditions())
	assert.Equal(t, "limited", (&weather.Observation{WindSpeed: 2.0}).DispersalConditions())
	assert.Equal(t, "good", (&weather.Observation{WindSpeed: 5.0}).DispersalConditions())
	assert.Equal(t, "excellent", (&weather.Observation{WindSpeed: 10.0}).DispersalConditions())
}
