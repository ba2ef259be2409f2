package track

import (
	"fmt"
	"math"
	"strings"
)

// AttitudeMode controls how bank and pitch values are interpreted
type AttitudeMode string

const (
	// AttitudeAuto treats magnitudes up to pi+0.2 as radians and anything larger as degrees.
	// Small angles reported in degrees are therefore misread as radians.
	AttitudeAuto    AttitudeMode = "auto"
	AttitudeRadians AttitudeMode = "radians"
	AttitudeDegrees AttitudeMode = "degrees"
)

// radiansThreshold is the largest magnitude the auto heuristic reads as radians
const radiansThreshold = math.Pi + 0.2

// ParseAttitudeMode validates a configured attitude mode
func ParseAttitudeMode(s string) (AttitudeMode, error) {
	switch m := AttitudeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case AttitudeAuto, AttitudeRadians, AttitudeDegrees:
		return m, nil
	case "":
		return AttitudeAuto, nil
	default:
		return "", fmt.Errorf("invalid attitude mode: %s (must be auto, radians, or degrees)", s)
	}
}

// ToDegrees converts an attitude value to degrees according to m
func (m AttitudeMode) ToDegrees(x float64) float64 {
	switch m {
	case AttitudeRadians:
		return x * 180 / math.Pi
	case AttitudeDegrees:
		return x
	default:
		if math.Abs(x) <= radiansThreshold {
			return x * 180 / math.Pi
		}
		return x
	}
}

// NormalizeCourse maps any course to [0, 360)
func NormalizeCourse(c float64) float64 {
	c = math.Mod(c, 360)
	if c < 0 {
		c += 360
	}
	// -1e-15 + 360 rounds to 360
	if c >= 360 {
		c = 0
	}
	return c
}
