package airquality

import "math"

// ExactMatchTolerance is the half-width in degrees of the box around a
// query point inside which a monitored location counts as an exact match.
// Roughly 500 m at Gurugram's latitude.
const ExactMatchTolerance = 0.005

// Estimator produces pollution estimates at arbitrary points from the
// monitored-location set using inverse distance weighting.
//
// Distances are squared planar differences in degree space with no geodesic
// correction. At a ~20 km city span the distortion is negligible and the
// distances only ever rank locations against each other.
type Estimator struct {
	tolerance float64
}

// NewEstimator returns an Estimator with the default exact-match tolerance.
func NewEstimator() *Estimator {
	return &Estimator{tolerance: ExactMatchTolerance}
}

// Estimate returns the estimated reading at point.
//
// A location inside the tolerance box short-circuits the estimate to that
// location's own value. When several qualify, the first in slice order wins;
// the slice order is the fetch order, so the tie-break is stable across
// calls on the same snapshot.
//
// Otherwise the estimate is the weighted mean over every location with
// weight 1/d², rounded to the nearest integer. A single-element set
// degenerates to that element's value. An empty set returns
// ErrEmptyLocationSet; callers handle it explicitly rather than receive a
// fabricated reading.
func (e *Estimator) Estimate(point QueryPoint, locations []MonitoredLocation) (EstimatedReading, error) {
	if len(locations) == 0 {
		return EstimatedReading{}, ErrEmptyLocationSet
	}

	for _, loc := range locations {
		if math.Abs(loc.Lat-point.Lat) < e.tolerance && math.Abs(loc.Lon-point.Lon) < e.tolerance {
			return EstimatedReading{
				Label:    loc.Name,
				Lat:      point.Lat,
				Lon:      point.Lon,
				AQI:      loc.AQI,
				Exact:    true,
				Category: CategoryFor(loc.AQI),
			}, nil
		}
	}

	var weightSum, weighted float64
	for _, loc := range locations {
		dLat := loc.Lat - point.Lat
		dLon := loc.Lon - point.Lon
		d2 := dLat*dLat + dLon*dLon

		// A truly coincident point cannot get here while the tolerance is
		// positive, but the division still needs a guard.
		var w float64
		if d2 == 0 {
			w = 1
		} else {
			w = 1 / d2
		}

		weightSum += w
		weighted += w * loc.AQI
	}

	aqi := math.Round(weighted / weightSum)
	return EstimatedReading{
		Label:    EstimatedLabel,
		Lat:      point.Lat,
		Lon:      point.Lon,
		AQI:      aqi,
		Category: CategoryFor(aqi),
	}, nil
}
