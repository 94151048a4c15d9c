// Package geo computes distances between coordinates.
package geo

import (
	"math"

	"github.com/okian/hangout/internal/domain/model"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula. Inputs are not range checked.
func DistanceKm(a, b model.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Within reports whether b lies within maxKm of a (inclusive).
func Within(a, b model.Coordinate, maxKm float64) bool {
	return DistanceKm(a, b) <= maxKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
