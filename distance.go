package geofilm

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371e3

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinate is a real point on the sphere:
// finite values, latitude in [-90, 90] and longitude in [-180, 180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) ||
		math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return s2.LatLngFromDegrees(c.Lat, c.Lng).IsValid()
}

// LatLng returns the s2 form of the coordinate.
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lng)
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	const rad = math.Pi / 180
	phi1 := a.Lat * rad
	phi2 := b.Lat * rad
	deltaPhi := (b.Lat - a.Lat) * rad
	deltaLambda := (b.Lng - a.Lng) * rad

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}
