package geo

import (
	"github.com/golang/geo/s2"
)

// AngularDistanceDegrees returns the great-circle angle between two lat/lon points, in degrees of arc.
func AngularDistanceDegrees(latOne, lonOne, latTwo, lonTwo float64) float64 {
	a := s2.LatLngFromDegrees(latOne, lonOne)
	b := s2.LatLngFromDegrees(latTwo, lonTwo)
	return a.Distance(b).Degrees()
}

// ValidLatLon reports whether (lat, lon) is a normalized geographic coordinate.
func ValidLatLon(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
