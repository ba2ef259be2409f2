package geo

import (
	"math"

	"sensors2ff/internal/models"
)

const (
	// EarthRadiusMeters is the mean Earth radius used for great-circle distances
	EarthRadiusMeters = 6371000.0

	MetersPerNauticalMile = 1852.0
	MetersPerKilometer    = 1000.0
	MetersPerStatuteMile  = 1609.344
)

// Haversine returns the great-circle distance in meters between two points
func Haversine(a, b models.Coordinate) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	phi1, phi2 := rad(a.Latitude), rad(b.Latitude)
	dphi := rad(b.Latitude - a.Latitude)
	dlambda := rad(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dphi/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dlambda/2), 2)
	// Rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, h)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// HaversineNM returns the great-circle distance in nautical miles
func HaversineNM(a, b models.Coordinate) float64 {
	return Haversine(a, b) / MetersPerNauticalMile
}

// ValidCoordinate reports whether lat/lon lie within their geographic bounds
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
