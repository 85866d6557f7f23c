package advisory

// Recommendations returns the health guidance for the given city AQI.
func Recommendations(aqi int) []string {
	switch {
	case aqi <= 50:
		return []string{
			"Air quality is good, enjoy outdoor activities",
			"No special precautions needed",
			"Great day for outdoor exercise",
			"Open windows for natural ventilation",
		}
	case aqi <= 100:
		return []string{
			"Air quality is acceptable for most individuals",
			"Sensitive groups should consider limiting prolonged outdoor exertion",
			"Good day for moderate outdoor activities",
			"Keep windows open during cleaner periods of the day",
		}
	case aqi <= 150:
		return []string{
			"Moderate outdoor activities",
			"Sensitive groups should limit outdoor exposure",
			"Use air purifiers indoors if available",
			"Consider wearing masks when outdoors",
		}
	case aqi <= 200:
		return []string{
			"Avoid prolonged outdoor exertion",
			"Keep windows closed and use air purifiers",
			"Wear N95 masks when outdoors",
			"Consider working from home if possible",
		}
	default:
		return []string{
			"Limit outdoor activities, especially for sensitive groups",
			"Keep windows closed during peak pollution hours",
			"Use air purifiers indoors if available",
			"Consider wearing masks when outdoors",
			"Stay indoors as much as possible",
		}
	}
}

// FallbackRecommendations is the guidance served when no current reading is
// available.
func FallbackRecommendations() []string {
	return []string{
		"Limit outdoor activities, especially for sensitive groups",
		"Keep windows closed during peak pollution hours",
		"Use air purifiers indoors if available",
		"Consider wearing masks when outdoors",
	}
}
