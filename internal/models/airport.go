package models

// Airport represents one entry of an airport directory
// Fields correspond to the OurAirports airports.csv columns we consume.
type Airport struct {
	Ident     string // Normalized uppercase identifier (e.g., EDDM)
	Type      string // Lowercase type (e.g., small_airport)
	Latitude  float64
	Longitude float64
}

// NearestMatch is the result of a nearest-airport lookup
// Ident is empty when nothing lies within the search radius.
type NearestMatch struct {
	Ident      string
	DistanceNM float64
}

// Found reports whether the lookup produced an airport
func (m NearestMatch) Found() bool {
	return m.Ident != ""
}
