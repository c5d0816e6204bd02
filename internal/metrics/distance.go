package metrics

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6_371_008.8

// Distance returns the great-circle distance in meters between two points given in
// degrees. It uses the haversine half-angle form, which stays accurate for the
// few-meter separations between consecutive GPS fixes.
func Distance(a, b orb.Point) float64 {
	if a == b {
		return 0
	}

	lat1 := deg2rad(a.Lat())
	lat2 := deg2rad(b.Lat())
	dLat := deg2rad(b.Lat() - a.Lat())
	dLon := deg2rad(b.Lon() - a.Lon())

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// rounding can push h slightly outside [0,1] near antipodes
	h = math.Min(math.Max(h, 0), 1)

	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
