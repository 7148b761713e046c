// Package geo provides the pure geographic primitives used by delivery zone
// detection and verification.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
const EarthRadiusMeters = 6371000

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance in meters between two
// coordinates using the Haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// DistanceBetween is Distance over two Points.
func DistanceBetween(a, b Point) float64 {
	return Distance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// InCircle reports whether the point lies within (or on) the circle of the
// given radius in meters around the center.
func InCircle(pointLat, pointLng, centerLat, centerLng, radiusMeters float64) bool {
	return Distance(pointLat, pointLng, centerLat, centerLng) <= radiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
