package airquality

import "math"

// Category is an AQI display band.
type Category string

const (
	CategoryGood          Category = "Good"
	CategoryModerate      Category = "Moderate"
	CategorySensitive     Category = "Unhealthy for Sensitive Groups"
	CategoryUnhealthy     Category = "Unhealthy"
	CategoryVeryUnhealthy Category = "Very Unhealthy"
	CategoryHazardous     Category = "Hazardous"
)

// Categories lists the bands in ascending severity order.
func Categories() []Category {
	return []Category{
		CategoryGood,
		CategoryModerate,
		CategorySensitive,
		CategoryUnhealthy,
		CategoryVeryUnhealthy,
		CategoryHazardous,
	}
}

// CategoryFor classifies an AQI value. The thresholds are a shared contract:
// the map legend, current conditions, estimated readings, forecast entries,
// and rendering code all classify against this exact table.
//
//	<=50 Good, <=100 Moderate, <=150 Unhealthy for Sensitive Groups,
//	<=200 Unhealthy, <=300 Very Unhealthy, above Hazardous.
func CategoryFor(aqi float64) Category {
	switch {
	case aqi <= 50:
		return CategoryGood
	case aqi <= 100:
		return CategoryModerate
	case aqi <= 150:
		return CategorySensitive
	case aqi <= 200:
		return CategoryUnhealthy
	case aqi <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// Color returns the legend color for the band.
func (c Category) Color() string {
	switch c {
	case CategoryGood:
		return "#00e400"
	case CategoryModerate:
		return "#ffff00"
	case CategorySensitive:
		return "#ff7e00"
	case CategoryUnhealthy:
		return "#ff0000"
	case CategoryVeryUnhealthy:
		return "#8f3f97"
	default:
		return "#7e0023"
	}
}

// MaxAQI returns the upper bound of the band, or 0 for the open-ended
// Hazardous band.
func (c Category) MaxAQI() int {
	switch c {
	case CategoryGood:
		return 50
	case CategoryModerate:
		return 100
	case CategorySensitive:
		return 150
	case CategoryUnhealthy:
		return 200
	case CategoryVeryUnhealthy:
		return 300
	default:
		return 0
	}
}

// standardScale maps the OpenWeatherMap 1..5 quality index onto the 0-500
// standard scale.
var standardScale = map[int]float64{
	1: 50,  // Good
	2: 100, // Fair
	3: 150, // Moderate
	4: 200, // Poor
	5: 300, // Very Poor
}

// StandardAQI converts an OpenWeatherMap air-quality index and PM2.5
// concentration (µg/m³) to the 0-500 standard scale. Elevated PM2.5
// concentrations dominate the result; the raw index only decides the value
// while PM2.5 stays low.
func StandardAQI(index int, pm25 float64) int {
	switch {
	case pm25 > 250:
		return int(math.Round(400 + math.Min(pm25-250, 100)))
	case pm25 > 150:
		return int(math.Round(300 + math.Floor((pm25-150)/2)))
	case pm25 > 55:
		return int(math.Round(200 + math.Floor((pm25-55)/1.5)))
	case pm25 > 35:
		return int(math.Round(150 + (pm25-35)*2.5))
	case pm25 > 12:
		return int(math.Round(50 + (pm25-12)*4.3))
	}

	base, ok := standardScale[index]
	if !ok {
		base = 150
	}
	return int(base)
}
