package airports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"sensors2ff/internal/geo"
	"sensors2ff/internal/models"

	"github.com/klauspost/compress/zstd"
)

// DefaultTypes are the OurAirports types kept when no type filter is configured
var DefaultTypes = []string{"large_airport", "medium_airport", "small_airport"}

// Column aliases, tried in order; matching is case-insensitive
var (
	identColumns = []string{"ident", "icao", "code"}
	typeColumns  = []string{"type"}
	latColumns   = []string{"latitude_deg", "lat", "latitude"}
	lonColumns   = []string{"longitude_deg", "lon", "longitude"}
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Options controls which directory records are kept
type Options struct {
	ICAOOnly bool
	Types    []string // empty keeps every type
}

// LoadFile reads and filters an airport directory, decompressing zstd input
func LoadFile(path string, opts Options) ([]models.Airport, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Filter(recs, opts), nil
}

// ReadFile reads every usable record of a directory file without filtering
func ReadFile(path string) ([]models.Airport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airport directory %s: %w", path, err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var r io.Reader = br
	if magic, err := br.Peek(len(zstdMagic)); err == nil && string(magic) == string(zstdMagic) {
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	recs, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read airport directory %s: %w", path, err)
	}
	return recs, nil
}

// Read parses directory CSV records; rows missing an identifier or a numeric
// position are dropped.
func Read(r io.Reader) ([]models.Airport, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	identIdx := findColumn(header, identColumns)
	typeIdx := findColumn(header, typeColumns)
	latIdx := findColumn(header, latColumns)
	lonIdx := findColumn(header, lonColumns)
	if identIdx < 0 || latIdx < 0 || lonIdx < 0 {
		return nil, fmt.Errorf("airport directory needs ident, latitude and longitude columns")
	}

	var out []models.Airport
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		ident := strings.ToUpper(getField(record, identIdx))
		if ident == "" {
			continue
		}
		lat, err := strconv.ParseFloat(getField(record, latIdx), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(getField(record, lonIdx), 64)
		if err != nil {
			continue
		}
		// ParseFloat accepts NaN and Inf
		if !geo.ValidCoordinate(lat, lon) {
			continue
		}

		out = append(out, models.Airport{
			Ident:     ident,
			Type:      strings.ToLower(getField(record, typeIdx)),
			Latitude:  lat,
			Longitude: lon,
		})
	}

	return out, nil
}

// Filter applies the ICAO and type restrictions
func Filter(recs []models.Airport, opts Options) []models.Airport {
	types := make(map[string]bool, len(opts.Types))
	for _, t := range opts.Types {
		types[strings.ToLower(strings.TrimSpace(t))] = true
	}

	out := make([]models.Airport, 0, len(recs))
	for _, ap := range recs {
		if len(types) > 0 && !types[ap.Type] {
			continue
		}
		if opts.ICAOOnly && !IsICAO(ap.Ident) {
			continue
		}
		out = append(out, ap)
	}
	return out
}

// IsICAO reports whether ident is exactly four ASCII letters or digits
func IsICAO(ident string) bool {
	if len(ident) != 4 {
		return false
	}
	for _, c := range ident {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Nearest returns the closest airport to p within maxNM, scanning every record
func Nearest(p models.Coordinate, recs []models.Airport, maxNM float64) models.NearestMatch {
	var best models.NearestMatch
	bestNM := -1.0
	for _, ap := range recs {
		d := geo.HaversineNM(p, models.Coordinate{Latitude: ap.Latitude, Longitude: ap.Longitude})
		if math.IsNaN(d) {
			continue
		}
		if bestNM < 0 || d < bestNM {
			bestNM = d
			best = models.NearestMatch{Ident: ap.Ident, DistanceNM: d}
		}
	}
	if bestNM < 0 || bestNM > maxNM {
		return models.NearestMatch{}
	}
	return best
}

func findColumn(header []string, candidates []string) int {
	for _, c := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.Trim(strings.TrimSpace(h), "'\""), c) {
				return i
			}
		}
	}
	return -1
}

// getField safely retrieves a trimmed field by index
func getField(record []string, idx int) string {
	if idx >= 0 && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
