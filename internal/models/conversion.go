package models

import "time"

// Conversion records one completed sensors -> ForeFlight run
type Conversion struct {
	ID                 string
	Input              string
	Output             string
	CreatedAt          time.Time
	SampleCount        int
	SkippedRows        int
	StartTime          time.Time
	EndTime            time.Time
	DistanceMeters     float64
	SpeedUnit          string
	DerivedOrigin      string
	DerivedDestination string
}
