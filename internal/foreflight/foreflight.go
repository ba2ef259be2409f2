package foreflight

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sensors2ff/internal/models"
	"sensors2ff/internal/track"
)

// MetaHeader is the Section 1 header
var MetaHeader = []string{
	"Pilot", "Tail Number", "Derived Origin", "Start Latitude", "Start Longitude",
	"Derived Destination", "End Latitude", "End Longitude",
	"Start Time", "End Time", "Total Duration", "Total Distance",
	"Initial Attitude Source", "Device Model", "Device Model Detailed", "iOS Version",
	"Battery Level", "Battery State", "GPS Source",
	"Maximum Vertical Error", "Minimum Vertical Error", "Average Vertical Error",
	"Maximum Horizontal Error", "Minimum Horizontal Error", "Average Horizontal Error",
	"Imported From", "Route Waypoints",
}

// TrackHeader is the Section 2 header
var TrackHeader = []string{
	"Timestamp", "Latitude", "Longitude", "Altitude", "Course", "Speed",
	"Bank", "Pitch", "Horizontal Error", "Vertical Error", "g Load",
}

// Metadata is the Section 1 record
type Metadata struct {
	Pilot              string
	TailNumber         string
	DerivedOrigin      string
	DerivedDestination string
	Start              models.Coordinate
	End                models.Coordinate
	StartTime          time.Time
	EndTime            time.Time
	TotalDistance      float64 // already in the reporting unit

	AttitudeSource      string
	DeviceModel         string
	DeviceModelDetailed string
	IOSVersion          string
	BatteryLevel        string
	BatteryState        string
	GPSSource           string
	VerticalError       *track.Stats
	HorizontalError     *track.Stats
	ImportedFrom        string
	RouteWaypoints      string
}

// Values renders the record in MetaHeader order
func (m Metadata) Values() []string {
	vMax, vMin, vAvg := formatStats(m.VerticalError)
	hMax, hMin, hAvg := formatStats(m.HorizontalError)

	return []string{
		m.Pilot,
		m.TailNumber,
		m.DerivedOrigin,
		fixed(m.Start.Latitude, 7),
		fixed(m.Start.Longitude, 7),
		m.DerivedDestination,
		fixed(m.End.Latitude, 7),
		fixed(m.End.Longitude, 7),
		strconv.FormatInt(m.StartTime.UnixMilli(), 10),
		strconv.FormatInt(m.EndTime.UnixMilli(), 10),
		fixed(track.SecondsBetween(m.StartTime, m.EndTime), 1),
		fixed(m.TotalDistance, 14),
		m.AttitudeSource,
		m.DeviceModel,
		m.DeviceModelDetailed,
		m.IOSVersion,
		m.BatteryLevel,
		m.BatteryState,
		m.GPSSource,
		vMax, vMin, vAvg,
		hMax, hMin, hAvg,
		m.ImportedFrom,
		m.RouteWaypoints,
	}
}

// SampleValues renders one sample in TrackHeader order
func SampleValues(s models.Sample) []string {
	return []string{
		Timestamp(s.Timestamp),
		fixed(s.Latitude, 7),
		fixed(s.Longitude, 7),
		optional(s.Altitude, 1),
		optional(s.Track, 1),
		optional(s.Speed, 1),
		optional(s.Bank, 2),
		optional(s.Pitch, 2),
		optional(s.HorizontalError, 2),
		optional(s.VerticalError, 2),
		optional(s.GLoad, 6),
	}
}

// Timestamp formats t as epoch seconds with 10 significant digits
func Timestamp(t time.Time) string {
	sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return strconv.FormatFloat(sec, 'g', 10, 64)
}

// Render writes both sections. Every field of the metadata values row is quoted,
// empty fields included.
func Render(w io.Writer, meta Metadata, samples []models.Sample) error {
	bw := bufio.NewWriter(w)

	cw := csv.NewWriter(bw)
	cw.UseCRLF = true

	if err := cw.Write(MetaHeader); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}

	if _, err := bw.WriteString(quoteAll(meta.Values()) + "\r\n"); err != nil {
		return fmt.Errorf("failed to write metadata values: %w", err)
	}

	if err := cw.Write(TrackHeader); err != nil {
		return fmt.Errorf("failed to write track header: %w", err)
	}
	for _, s := range samples {
		if err := cw.Write(SampleValues(s)); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}

	return bw.Flush()
}

func quoteAll(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func formatStats(s *track.Stats) (string, string, string) {
	if s == nil {
		return "", "", ""
	}
	return fixed(s.Max, 3), fixed(s.Min, 3), fixed(s.Mean, 6)
}

func optional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return fixed(*v, prec)
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
