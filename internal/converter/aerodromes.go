package converter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sensors2ff/internal/airports"
	"sensors2ff/internal/database"
	"sensors2ff/internal/models"
	"sensors2ff/internal/track"
)

// airportBatchSize is the number of directory rows stored per cache transaction
const airportBatchSize = 5000

// AerodromeOptions controls origin/destination detection
type AerodromeOptions struct {
	Path        string // empty disables detection
	ThresholdNM float64
	Filter      airports.Options
	Cache       database.AirportRepository // nil reads the file every run
}

// Aerodromes holds the derived endpoints; a zero match means none within range
type Aerodromes struct {
	Origin      models.NearestMatch
	Destination models.NearestMatch
}

// DeriveAerodromes matches the summary's first and last positions against the
// airport directory. Directory problems are logged and yield no matches.
func DeriveAerodromes(summary track.Summary, opts AerodromeOptions) Aerodromes {
	if opts.Path == "" {
		return Aerodromes{}
	}

	recs, err := loadDirectory(opts)
	if err != nil {
		slog.Warn("Airport directory unavailable, skipping aerodrome detection", "path", opts.Path, "error", err)
		return Aerodromes{}
	}
	recs = airports.Filter(recs, opts.Filter)
	slog.Debug("Loaded airport directory", "path", opts.Path, "airports", len(recs))

	a := Aerodromes{
		Origin:      airports.Nearest(summary.FirstPosition, recs, opts.ThresholdNM),
		Destination: airports.Nearest(summary.LastPosition, recs, opts.ThresholdNM),
	}
	slog.Debug("Derived aerodromes",
		"origin", a.Origin.Ident, "origin_nm", a.Origin.DistanceNM,
		"destination", a.Destination.Ident, "destination_nm", a.Destination.DistanceNM,
	)
	return a
}

// loadDirectory returns the unfiltered directory, going through the cache when
// one is configured. The cache is keyed by absolute path and modification time.
func loadDirectory(opts AerodromeOptions) ([]models.Airport, error) {
	info, err := os.Stat(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat airport directory: %w", err)
	}
	if opts.Cache == nil {
		return airports.ReadFile(opts.Path)
	}

	source, err := filepath.Abs(opts.Path)
	if err != nil {
		source = opts.Path
	}

	loaded, err := opts.Cache.IsSourceLoaded(source, info.ModTime())
	if err != nil {
		slog.Warn("Failed to check airport cache", "source", source, "error", err)
		return airports.ReadFile(opts.Path)
	}
	if loaded {
		recs, err := opts.Cache.List(source)
		if err == nil {
			slog.Debug("Airport directory served from cache", "source", source)
			return recs, nil
		}
		slog.Warn("Failed to read airport cache", "source", source, "error", err)
	}

	recs, err := airports.ReadFile(opts.Path)
	if err != nil {
		return nil, err
	}

	slog.Info("Caching airport directory", "source", source, "airports", len(recs))
	if err := opts.Cache.ReplaceSource(source, info.ModTime(), recs, airportBatchSize); err != nil {
		slog.Warn("Failed to cache airport directory", "source", source, "error", err)
	}
	return recs, nil
}
