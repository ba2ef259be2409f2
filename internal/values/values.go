package values

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel is the "no data" code some firmware writes in place of a reading
const Sentinel = 999999.0

// MaxMagnitude is the largest magnitude accepted as a real measurement
const MaxMagnitude = 1e12

// formatErrorPattern matches the token Go's fmt package emits for a bad verb/argument
// pair, e.g. "%!f(int=0)". Stratux writes these when a value is unavailable.
var formatErrorPattern = regexp.MustCompile(`^%!\w?\(.*\)$`)

// unitSuffixes are trailing units stripped before a second parse attempt
// Order matters: the first matching suffix wins.
var unitSuffixes = []string{"ft", "feet", "kts", "knots", "mps", "kmh", "km/h", "m/s"}

// ParseNumber leniently converts a raw field to a number
// It returns false when the field is empty, unparseable, or a known device fault code.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if IsFormatError(s) {
		return 0, true
	}

	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var ok bool
		if x, ok = parseWithUnit(s); !ok {
			return 0, false
		}
	}

	return filterSentinel(x)
}

// ParseOptional is ParseNumber returning nil for absent values
func ParseOptional(raw string) *float64 {
	v, ok := ParseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}

// IsFormatError reports whether s is a firmware formatting error marker
func IsFormatError(s string) bool {
	return formatErrorPattern.MatchString(s)
}

func parseWithUnit(s string) (float64, bool) {
	lower := strings.ToLower(s)
	for _, unit := range unitSuffixes {
		if !strings.HasSuffix(lower, unit) {
			continue
		}
		num := strings.TrimSpace(s[:len(s)-len(unit)])
		num = strings.ReplaceAll(num, ",", ".")
		x, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

func filterSentinel(x float64) (float64, bool) {
	if math.IsNaN(x) {
		return 0, false
	}
	if x == Sentinel || math.Abs(x) > MaxMagnitude {
		return 0, false
	}
	return x, true
}
