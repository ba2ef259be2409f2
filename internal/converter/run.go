package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sensors2ff/internal/airports"
	"sensors2ff/internal/config"
	"sensors2ff/internal/database"
	"sensors2ff/internal/foreflight"
	"sensors2ff/internal/models"
	"sensors2ff/internal/schema"
	"sensors2ff/internal/sensorlog"
	"sensors2ff/internal/units"
)

// Exit codes
const (
	ExitOK        = 0
	ExitDataError = 1
	ExitUsage     = 2
	ExitIOFailure = 3
)

// StdoutFilename selects standard output as the destination
const StdoutFilename = "-"

var (
	// ErrIO marks failures to read the input or write the output
	ErrIO = errors.New("i/o failure")
	// ErrUsage marks unusable configuration discovered while running
	ErrUsage = errors.New("invalid configuration")
)

// Report describes a finished run
type Report struct {
	Result     *Result
	Aerodromes Aerodromes
	Conversion models.Conversion
}

// MetadataOptions holds the Section 1 values that do not come from the track
type MetadataOptions struct {
	Pilot          string
	TailNumber     string
	DistanceUnit   units.DistanceUnit
	AttitudeSource string
	GPSSource      string
	ImportedFrom   string
}

// Run converts cfg.Input into cfg.Output; stdout receives the CSV when the
// output is "-".
func Run(cfg *config.Config, stdout io.Writer) (*Report, error) {
	table, err := loadAliases(cfg.AliasesPath)
	if err != nil {
		return nil, err
	}

	l, err := sensorlog.ReadFile(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	slog.Debug("Read sensor log", "path", cfg.Input, "rows", len(l.Rows), "columns", len(l.Header))

	var db *database.DB
	if cfg.DBPath != "" {
		db, err = database.New(cfg.DBPath)
		if err != nil {
			slog.Warn("Database unavailable, continuing without cache or history", "path", cfg.DBPath, "error", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	res, err := Convert(l, Options{
		SpeedUnit:       cfg.SpeedUnits,
		SpeedSampleSize: cfg.SpeedSampleSize,
		AnchorDate:      cfg.SODDate,
		EpochFallback:   cfg.EpochFallback,
		Attitude:        cfg.Attitude,
		Aliases:         table,
	})
	if err != nil {
		return nil, err
	}

	aeroOpts := AerodromeOptions{
		Path:        cfg.Airports.Path,
		ThresholdNM: cfg.Airports.ThresholdNM,
		Filter: airports.Options{
			ICAOOnly: cfg.Airports.ICAOOnly,
			Types:    cfg.Airports.Types,
		},
	}
	if db != nil {
		aeroOpts.Cache = db.AirportRepository()
	}
	aero := DeriveAerodromes(res.Summary, aeroOpts)

	meta := BuildMetadata(res, aero, MetadataOptions{
		Pilot:          cfg.Pilot,
		TailNumber:     cfg.TailNumber,
		DistanceUnit:   cfg.DistanceUnits,
		AttitudeSource: cfg.Source.Attitude,
		GPSSource:      cfg.Source.GPS,
		ImportedFrom:   cfg.Source.ImportedFrom,
	})

	if err := writeOutput(cfg.Output, stdout, meta, res.Samples); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	report := &Report{
		Result:     res,
		Aerodromes: aero,
		Conversion: models.Conversion{
			Input:              cfg.Input,
			Output:             cfg.Output,
			CreatedAt:          time.Now().UTC(),
			SampleCount:        res.Summary.Accepted,
			SkippedRows:        res.Summary.Skipped,
			StartTime:          res.Summary.FirstTime,
			EndTime:            res.Summary.LastTime,
			DistanceMeters:     res.Summary.DistanceMeters,
			SpeedUnit:          string(res.SpeedUnit),
			DerivedOrigin:      aero.Origin.Ident,
			DerivedDestination: aero.Destination.Ident,
		},
	}

	if db != nil {
		if err := db.ConversionRepository().Insert(&report.Conversion); err != nil {
			slog.Warn("Failed to record conversion", "error", err)
		}
	}

	return report, nil
}

// BuildMetadata assembles the Section 1 record for res
func BuildMetadata(res *Result, aero Aerodromes, opts MetadataOptions) foreflight.Metadata {
	s := &res.Summary
	return foreflight.Metadata{
		Pilot:              opts.Pilot,
		TailNumber:         opts.TailNumber,
		DerivedOrigin:      aero.Origin.Ident,
		DerivedDestination: aero.Destination.Ident,
		Start:              s.FirstPosition,
		End:                s.LastPosition,
		StartTime:          s.FirstTime,
		EndTime:            s.LastTime,
		TotalDistance:      opts.DistanceUnit.FromMeters(s.DistanceMeters),
		AttitudeSource:     opts.AttitudeSource,
		GPSSource:          opts.GPSSource,
		VerticalError:      s.VerticalStats(),
		HorizontalError:    s.HorizontalStats(),
		ImportedFrom:       opts.ImportedFrom,
	}
}

// ExitCode maps a Run error to the process exit status
func ExitCode(err error) int {
	var cfgErr *schema.ConfigurationError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoSamples):
		return ExitDataError
	case errors.As(err, &cfgErr), errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrIO):
		return ExitIOFailure
	default:
		return ExitDataError
	}
}

func loadAliases(path string) (schema.CandidateTable, error) {
	table := schema.DefaultTable()
	if path == "" {
		return table, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open alias table: %w", ErrUsage, err)
	}
	defer file.Close()

	extra, err := schema.ParseTable(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse alias table %s: %w", ErrUsage, path, err)
	}
	return table.Merge(extra), nil
}

func writeOutput(path string, stdout io.Writer, meta foreflight.Metadata, samples []models.Sample) error {
	if path == StdoutFilename {
		return foreflight.Render(stdout, meta, samples)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output %s: %w", path, err)
	}

	if err := foreflight.Render(file, meta, samples); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output %s: %w", path, err)
	}
	return nil
}
