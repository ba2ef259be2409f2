package units

import (
	"fmt"
	"sort"
	"strings"

	"sensors2ff/internal/geo"
)

// SpeedUnit is the unit of the groundspeed column in the input
type SpeedUnit string

const (
	Knots          SpeedUnit = "kts"
	MetersPerSec   SpeedUnit = "mps"
	KmPerHour      SpeedUnit = "kmh"
	AutoSpeedUnits SpeedUnit = "auto"
)

// ParseSpeedUnit validates a configured speed unit name
func ParseSpeedUnit(s string) (SpeedUnit, error) {
	switch u := SpeedUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case Knots, MetersPerSec, KmPerHour, AutoSpeedUnits:
		return u, nil
	default:
		return "", fmt.Errorf("invalid speed unit: %s (must be kts, mps, kmh, or auto)", s)
	}
}

// ToKnots converts v from u to knots
func (u SpeedUnit) ToKnots(v float64) float64 {
	switch u {
	case MetersPerSec:
		return v * 1.943844492
	case KmPerHour:
		return v * 0.539956803
	default:
		return v
	}
}

// DistanceUnit is the unit reported for Total Distance
type DistanceUnit string

const (
	NauticalMiles DistanceUnit = "nm"
	Kilometers    DistanceUnit = "km"
	StatuteMiles  DistanceUnit = "mi"
)

// ParseDistanceUnit validates a configured distance unit name
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch u := DistanceUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case NauticalMiles, Kilometers, StatuteMiles:
		return u, nil
	default:
		return "", fmt.Errorf("invalid distance unit: %s (must be nm, km, or mi)", s)
	}
}

// FromMeters converts a distance in meters to u
func (u DistanceUnit) FromMeters(m float64) float64 {
	switch u {
	case Kilometers:
		return m / geo.MetersPerKilometer
	case StatuteMiles:
		return m / geo.MetersPerStatuteMile
	default:
		return m / geo.MetersPerNauticalMile
	}
}

// MinInferenceSamples is the number of valid speeds needed before the median is trusted
const MinInferenceSamples = 5

// SpeedBand is an inclusive median range attributed to one unit
type SpeedBand struct {
	Unit     SpeedUnit
	Min, Max float64
}

// DefaultSpeedBands are tuned to small-aircraft cruise speeds and checked in order.
// The ranges overlap, so order decides: a median of 60 is knots, not m/s.
var DefaultSpeedBands = []SpeedBand{
	{Unit: Knots, Min: 40, Max: 250},
	{Unit: MetersPerSec, Min: 18, Max: 100},
	{Unit: KmPerHour, Min: 70, Max: 450},
}

// InferSpeedUnit guesses the groundspeed unit from a prefix of samples using DefaultSpeedBands
// This is best-effort; anything it cannot place is reported as knots.
func InferSpeedUnit(samples []*float64) SpeedUnit {
	return InferSpeedUnitWithBands(samples, DefaultSpeedBands)
}

// InferSpeedUnitWithBands is InferSpeedUnit with a caller-supplied band policy
func InferSpeedUnitWithBands(samples []*float64, bands []SpeedBand) SpeedUnit {
	vals := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s != nil {
			vals = append(vals, *s)
		}
	}
	if len(vals) < MinInferenceSamples {
		return Knots
	}

	sort.Float64s(vals)
	m := vals[len(vals)/2]

	for _, b := range bands {
		if m >= b.Min && m <= b.Max {
			return b.Unit
		}
	}
	return Knots
}
