package geo

import (
	"math"

	"github.com/bbernstein/chargemap/internal/models"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between a and b.
// Inputs are assumed to lie within the legal coordinate range.
func Distance(a, b models.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h just outside [0, 1] near antipodes.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Asin(math.Sqrt(h))
	return earthRadiusKm * c
}

// ValidCoordinate reports whether c is within ±90° latitude and ±180° longitude.
func ValidCoordinate(c models.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
