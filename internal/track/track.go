package track

import (
	"time"

	"sensors2ff/internal/geo"
	"sensors2ff/internal/models"
	"sensors2ff/internal/units"
)

// Observation is one row's parsed values before validation
// Nil pointers mean the value was absent or unusable.
type Observation struct {
	Latitude        *float64
	Longitude       *float64
	Time            *time.Time
	Altitude        *float64
	Speed           *float64 // in the aggregator's input speed unit
	Track           *float64
	Bank            *float64
	Pitch           *float64
	HorizontalError *float64
	VerticalError   *float64
	GLoad           *float64
}

// Summary holds the flight-level values computed over all accepted samples
type Summary struct {
	FirstTime      time.Time
	LastTime       time.Time
	FirstPosition  models.Coordinate // position at FirstTime
	LastPosition   models.Coordinate // position at LastTime
	DistanceMeters float64
	HorizontalErrs []float64
	VerticalErrs   []float64
	Accepted       int
	Skipped        int
}

// Duration returns the time between the earliest and latest sample
func (s *Summary) Duration() time.Duration {
	return s.LastTime.Sub(s.FirstTime)
}

// DurationSeconds is Duration as float seconds, without time.Duration's ~292 year limit
func (s *Summary) DurationSeconds() float64 {
	return SecondsBetween(s.FirstTime, s.LastTime)
}

// SecondsBetween returns b-a in seconds
func SecondsBetween(a, b time.Time) float64 {
	return float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
}

// HorizontalStats returns nil when no horizontal error was reported
func (s *Summary) HorizontalStats() *Stats {
	return ComputeStats(s.HorizontalErrs)
}

// VerticalStats returns nil when no vertical error was reported
func (s *Summary) VerticalStats() *Stats {
	return ComputeStats(s.VerticalErrs)
}

// Aggregator folds observations, in row order, into samples and a summary
type Aggregator struct {
	speedUnit units.SpeedUnit
	attitude  AttitudeMode

	samples []models.Sample
	summary Summary
	prev    *models.Coordinate
}

// NewAggregator creates an aggregator converting speeds from speedUnit
func NewAggregator(speedUnit units.SpeedUnit, attitude AttitudeMode) *Aggregator {
	return &Aggregator{
		speedUnit: speedUnit,
		attitude:  attitude,
	}
}

// Add validates obs and folds it in; it reports whether a sample was produced
func (a *Aggregator) Add(obs Observation) bool {
	if obs.Latitude == nil || obs.Longitude == nil || obs.Time == nil ||
		!geo.ValidCoordinate(*obs.Latitude, *obs.Longitude) {
		a.summary.Skipped++
		return false
	}

	s := models.Sample{
		Timestamp:       obs.Time.UTC(),
		Latitude:        *obs.Latitude,
		Longitude:       *obs.Longitude,
		Altitude:        obs.Altitude,
		HorizontalError: obs.HorizontalError,
		VerticalError:   obs.VerticalError,
		GLoad:           obs.GLoad,
	}
	if obs.Track != nil {
		s.Track = models.Float(NormalizeCourse(*obs.Track))
	}
	if obs.Speed != nil {
		s.Speed = models.Float(a.speedUnit.ToKnots(*obs.Speed))
	}
	if obs.Bank != nil {
		s.Bank = models.Float(a.attitude.ToDegrees(*obs.Bank))
	}
	if obs.Pitch != nil {
		s.Pitch = models.Float(a.attitude.ToDegrees(*obs.Pitch))
	}

	pos := s.Coordinate()
	if a.prev != nil {
		a.summary.DistanceMeters += geo.Haversine(*a.prev, pos)
	}
	a.prev = &pos

	if s.HorizontalError != nil {
		a.summary.HorizontalErrs = append(a.summary.HorizontalErrs, *s.HorizontalError)
	}
	if s.VerticalError != nil {
		a.summary.VerticalErrs = append(a.summary.VerticalErrs, *s.VerticalError)
	}

	// Strict < keeps the first row seen at the earliest time; >= moves to the
	// last row seen at the latest time.
	if a.summary.Accepted == 0 || s.Timestamp.Before(a.summary.FirstTime) {
		a.summary.FirstTime = s.Timestamp
		a.summary.FirstPosition = pos
	}
	if a.summary.Accepted == 0 || !s.Timestamp.Before(a.summary.LastTime) {
		a.summary.LastTime = s.Timestamp
		a.summary.LastPosition = pos
	}

	a.summary.Accepted++
	a.samples = append(a.samples, s)
	return true
}

// Samples returns the accepted samples in row order
func (a *Aggregator) Samples() []models.Sample {
	return a.samples
}

// Summary returns the flight summary accumulated so far
func (a *Aggregator) Summary() Summary {
	return a.summary
}

// Fold runs observations through a fresh aggregator
func Fold(obs []Observation, speedUnit units.SpeedUnit, attitude AttitudeMode) ([]models.Sample, Summary) {
	agg := NewAggregator(speedUnit, attitude)
	for _, o := range obs {
		agg.Add(o)
	}
	return agg.Samples(), agg.Summary()
}
