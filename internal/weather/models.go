// Package weather provides local weather observations for the air quality
// distribution model and the dashboard's weather panel.
package weather

import (
	"errors"
	"math"
	"time"
)

// ErrProviderUnavailable means the upstream weather feed could not be
// reached or returned garbage.
var ErrProviderUnavailable = errors.New("weather feed unavailable")

// ErrInvalidCoordinates means the requested point is outside the valid
// latitude and longitude ranges.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Observation is one weather reading at a point.
type Observation struct {
	Lat, Lon float64

	Temperature float64 // Celsius
	Humidity    float64 // percent
	Pressure    float64 // hPa

	WindSpeed float64 // m/s
	WindDeg   float64 // bearing, 0 = north, 90 = east

	Condition   Condition
	Description string

	Visibility float64 // metres

	ObservedAt time.Time // upstream station timestamp
	FetchedAt  time.Time // when this process pulled the reading
}

// WindDirection returns the 16-point compass name for the wind bearing.
func (o *Observation) WindDirection() string {
	return DirectionName(o.WindDeg)
}

// DispersalConditions describes how readily the current wind disperses
// pollutants, as shown on the hotspot map.
func (o *Observation) DispersalConditions() string {
	return dispersalByWind[CategorizeWind(o.WindSpeed)]
}

// Condition is the general sky state, mapped from the provider's
// condition groups.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"

	// Stubble-burning smoke and pre-monsoon dust storms are distinct
	// states on the dashboard, not haze.
	ConditionSmoke Condition = "SMOKE"
	ConditionDust  Condition = "DUST"

	ConditionUnknown Condition = "UNKNOWN"
)

var compassNames = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// DirectionName maps a bearing in degrees to its 16-point compass name.
// Each sector spans 22.5 degrees centered on the named bearing.
func DirectionName(deg float64) string {
	idx := int(math.Round(deg/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassNames[idx]
}

// WindCategory buckets wind speed by how strongly it moves pollutants
// out of the city basin.
type WindCategory string

const (
	WindCalm     WindCategory = "CALM"
	WindLight    WindCategory = "LIGHT"
	WindModerate WindCategory = "MODERATE"
	WindStrong   WindCategory = "STRONG"
)

// windBands lists category upper bounds in m/s, ordered ascending.
// Speeds past the last band are strong.
var windBands = []struct {
	below float64
	cat   WindCategory
}{
	{1, WindCalm},
	{3, WindLight},
	{8, WindModerate},
}

var dispersalByWind = map[WindCategory]string{
	WindCalm:     "poor",
	WindLight:    "limited",
	WindModerate: "good",
	WindStrong:   "excellent",
}

// CategorizeWind buckets a wind speed in m/s.
func CategorizeWind(speed float64) WindCategory {
	for _, band := range windBands {
		if speed < band.below {
			return band.cat
		}
	}
	return WindStrong
}
