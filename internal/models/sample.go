package models

import "time"

// RawRow is one input record keyed by the original header string
type RawRow map[string]string

// Sample is a normalized flight-log point
// Optional fields are nil when the device did not report a usable value.
type Sample struct {
	Timestamp       time.Time
	Latitude        float64  // degrees, [-90, 90]
	Longitude       float64  // degrees, [-180, 180]
	Altitude        *float64 // feet
	Track           *float64 // degrees, [0, 360)
	Speed           *float64 // knots
	Bank            *float64 // degrees
	Pitch           *float64 // degrees
	HorizontalError *float64
	VerticalError   *float64
	GLoad           *float64
}

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Coordinate returns the sample position
func (s Sample) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Float returns a pointer to v, for building optional fields
func Float(v float64) *float64 {
	return &v
}
