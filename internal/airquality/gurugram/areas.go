// Package gurugram turns the single city-level OpenWeatherMap reading into
// the per-area monitored locations shown on the AirWise map.
package gurugram

// City center coordinates used for the upstream city-level fetches.
const (
	CityLat = 28.4595
	CityLon = 77.0266
)

// Area is one monitored area with its emission profile. Factor scales the
// city AQI, PM25Factor the city PM2.5 concentration.
type Area struct {
	Name       string
	Lat        float64
	Lon        float64
	Factor     float64
	PM25Factor float64
}

// Areas returns the monitored areas of Gurugram.
func Areas() []Area {
	return []Area{
		// City center - higher pollution due to traffic congestion
		{Name: "Gurugram City Center", Lat: 28.4595, Lon: 77.0266, Factor: 1.08, PM25Factor: 1.12},

		// Major traffic junctions
		{Name: "IFFCO Chowk", Lat: 28.4736, Lon: 77.0723, Factor: 1.15, PM25Factor: 1.20},
		{Name: "Rajiv Chowk", Lat: 28.4521, Lon: 77.0409, Factor: 1.14, PM25Factor: 1.18},
		{Name: "Sohna Chowk", Lat: 28.4176, Lon: 77.0253, Factor: 1.10, PM25Factor: 1.14},

		// Industrial areas - higher pollution
		{Name: "Udyog Vihar", Lat: 28.5015, Lon: 77.0854, Factor: 1.25, PM25Factor: 1.30},
		{Name: "Manesar Industrial Area", Lat: 28.3588, Lon: 76.9255, Factor: 1.22, PM25Factor: 1.28},

		// Residential areas - generally better air quality
		{Name: "DLF Phase 1", Lat: 28.4727, Lon: 77.1001, Factor: 0.92, PM25Factor: 0.90},
		{Name: "Sushant Lok", Lat: 28.4571, Lon: 77.0927, Factor: 0.94, PM25Factor: 0.92},
		{Name: "Sector 56", Lat: 28.4089, Lon: 77.0926, Factor: 0.96, PM25Factor: 0.95},
		{Name: "Golf Course Road", Lat: 28.4321, Lon: 77.1025, Factor: 0.90, PM25Factor: 0.88},

		// Green areas - better air quality
		{Name: "Biodiversity Park", Lat: 28.4515, Lon: 77.0835, Factor: 0.80, PM25Factor: 0.75},
		{Name: "Leisure Valley Park", Lat: 28.4681, Lon: 77.0723, Factor: 0.85, PM25Factor: 0.80},

		// Construction zones - high dust pollution
		{Name: "Dwarka Expressway", Lat: 28.5055, Lon: 76.9846, Factor: 1.18, PM25Factor: 1.35},
		{Name: "New Sectors Development", Lat: 28.3913, Lon: 76.9727, Factor: 1.16, PM25Factor: 1.32},

		// Commercial hubs
		{Name: "Cyber City", Lat: 28.4965, Lon: 77.0909, Factor: 1.05, PM25Factor: 1.08},
		{Name: "MG Road", Lat: 28.4773, Lon: 77.0497, Factor: 1.12, PM25Factor: 1.15},
	}
}
