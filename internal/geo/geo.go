package geo

import (
	"math"
	"sort"
)

const (
	// Earth mean radius in km.
	earthRadiusKM = 6371

	// NearbyRadiusKM bounds the "detections near me" summary. 15km keeps the
	// summary to sightings a person could plausibly verify on the ground.
	NearbyRadiusKM = 15.0
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Summary describes the detections within NearbyRadiusKM of a user.
type Summary struct {
	Count       int
	NearestKM   float64
	DistancesKM []float64
}

// DistanceKM returns the great-circle distance between two points using the
// haversine formula.
func DistanceKM(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(s))
}

// Nearby computes the proximity summary for a user position over a set of
// detection locations. Distances are filtered to NearbyRadiusKM and returned
// ascending. Recomputed in full each call; nothing is cached.
func Nearby(user Point, locations []Point) Summary {
	var distances []float64
	for _, loc := range locations {
		if d := DistanceKM(user, loc); d <= NearbyRadiusKM {
			distances = append(distances, d)
		}
	}
	sort.Float64s(distances)

	sum := Summary{Count: len(distances), DistancesKM: distances}
	if len(distances) > 0 {
		sum.NearestKM = distances[0]
	}
	return sum
}
