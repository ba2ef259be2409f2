package converter

import (
	"errors"
	"log/slog"
	"time"

	"sensors2ff/internal/models"
	"sensors2ff/internal/schema"
	"sensors2ff/internal/sensorlog"
	"sensors2ff/internal/timeres"
	"sensors2ff/internal/track"
	"sensors2ff/internal/units"
	"sensors2ff/internal/values"
)

// DefaultSpeedSampleSize bounds the prefix used for speed unit inference
const DefaultSpeedSampleSize = 1000

// ErrNoSamples is returned when no row survives validation
var ErrNoSamples = errors.New("no usable samples (missing lat/lon/time or all filtered)")

// Options controls one conversion
type Options struct {
	SpeedUnit       units.SpeedUnit // AutoSpeedUnits infers from the data
	SpeedSampleSize int
	AnchorDate      *time.Time
	EpochFallback   bool
	Attitude        track.AttitudeMode
	Aliases         schema.CandidateTable // nil uses schema.DefaultTable()

	Now func() time.Time // wall clock for the last-resort anchor; nil means time.Now
}

// Result is a converted track
type Result struct {
	Schema    *schema.ResolvedSchema
	SpeedUnit units.SpeedUnit
	Anchor    timeres.Anchor
	Samples   []models.Sample
	Summary   track.Summary
}

// Convert resolves the schema of l and folds its rows into samples
// Rows are read twice: a bounded prefix for unit inference, then every row in order.
func Convert(l *sensorlog.Log, opts Options) (*Result, error) {
	table := opts.Aliases
	if table == nil {
		table = schema.DefaultTable()
	}

	rs, err := schema.Resolve(l.Header, table)
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolved input columns", rs.LogAttrs()...)

	speedUnit := opts.SpeedUnit
	if speedUnit == "" || speedUnit == units.AutoSpeedUnits {
		size := opts.SpeedSampleSize
		if size <= 0 {
			size = DefaultSpeedSampleSize
		}
		prefix := speedPrefix(l.Rows, rs, size)
		speedUnit = units.InferSpeedUnit(prefix)
		slog.Debug("Inferred speed unit", "unit", speedUnit, "samples", len(prefix))
	}

	anchor := timeres.ResolveAnchor(opts.AnchorDate, l.ModTimeFunc(), opts.Now)
	if rs.Has(schema.SecondsOfDay) {
		if anchor.Source == timeres.AnchorWallClock {
			slog.Warn("No anchor date or file time available, seconds-of-day use today's date",
				"anchor", anchor.Midnight.Format(time.DateOnly))
		} else {
			slog.Debug("Resolved seconds-of-day anchor",
				"anchor", anchor.Midnight.Format(time.DateOnly), "source", anchor.Source)
		}
	}

	resolver := &timeres.Resolver{
		Schema:                 rs,
		Anchor:                 anchor,
		FallbackOnInvalidEpoch: opts.EpochFallback,
	}

	agg := track.NewAggregator(speedUnit, opts.Attitude)
	for _, row := range l.Rows {
		agg.Add(observe(row, rs, resolver))
	}

	summary := agg.Summary()
	slog.Debug("Folded sensor rows", "accepted", summary.Accepted, "skipped", summary.Skipped)
	if summary.Accepted == 0 {
		return nil, ErrNoSamples
	}

	return &Result{
		Schema:    rs,
		SpeedUnit: speedUnit,
		Anchor:    anchor,
		Samples:   agg.Samples(),
		Summary:   summary,
	}, nil
}

// speedPrefix collects up to n present speed values in row order
func speedPrefix(rows []models.RawRow, rs *schema.ResolvedSchema, n int) []*float64 {
	if !rs.Has(schema.GroundSpeed) {
		return nil
	}
	var out []*float64
	for _, row := range rows {
		if len(out) >= n {
			break
		}
		if v := values.ParseOptional(rs.Value(row, schema.GroundSpeed)); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func observe(row models.RawRow, rs *schema.ResolvedSchema, resolver *timeres.Resolver) track.Observation {
	obs := track.Observation{
		Latitude:        values.ParseOptional(rs.Value(row, schema.Latitude)),
		Longitude:       values.ParseOptional(rs.Value(row, schema.Longitude)),
		Altitude:        values.ParseOptional(rs.Value(row, schema.Altitude)),
		Speed:           values.ParseOptional(rs.Value(row, schema.GroundSpeed)),
		Track:           values.ParseOptional(rs.Value(row, schema.Track)),
		Bank:            values.ParseOptional(rs.Value(row, schema.Bank)),
		Pitch:           values.ParseOptional(rs.Value(row, schema.Pitch)),
		HorizontalError: values.ParseOptional(rs.Value(row, schema.HorizontalError)),
		VerticalError:   values.ParseOptional(rs.Value(row, schema.VerticalError)),
		GLoad:           values.ParseOptional(rs.Value(row, schema.GLoad)),
	}
	if t, ok := resolver.Resolve(row); ok {
		obs.Time = &t
	}
	return obs
}
