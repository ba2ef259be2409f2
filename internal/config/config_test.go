package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sensors2ff/internal/airports"
	"sensors2ff/internal/track"
	"sensors2ff/internal/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadArgs(t *testing.T, args ...string) (*Config, error) {
	fs := Flags()
	require.NoError(t, fs.Parse(args))
	return Load(fs)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadArgs(t, "sensors.csv", "-o", "track.csv")
	require.NoError(t, err)

	assert.Equal(t, "sensors.csv", cfg.Input)
	assert.Equal(t, "track.csv", cfg.Output)
	assert.Equal(t, "DEABC", cfg.TailNumber)
	assert.Equal(t, "", cfg.Pilot)
	assert.Equal(t, units.NauticalMiles, cfg.DistanceUnits)
	assert.Equal(t, units.Knots, cfg.SpeedUnits)
	assert.Equal(t, 1000, cfg.SpeedSampleSize)
	assert.Nil(t, cfg.SODDate)
	assert.False(t, cfg.EpochFallback)
	assert.Equal(t, track.AttitudeAuto, cfg.Attitude)
	assert.Equal(t, 20.0, cfg.Airports.ThresholdNM)
	assert.True(t, cfg.Airports.ICAOOnly)
	assert.Equal(t, airports.DefaultTypes, cfg.Airports.Types)
	assert.Equal(t, "Stratux", cfg.Source.Attitude)
	assert.Equal(t, "Stratux", cfg.Source.GPS)
	assert.Equal(t, "Stratux sensors converter", cfg.Source.ImportedFrom)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := loadArgs(t,
		"sensors.csv", "-o", "-",
		"--tail-number", "N12345",
		"--pilot", "Jane",
		"--distance-units", "km",
		"--speed-units", "auto",
		"--sod-date", "2024-01-01",
		"--airport-threshold-nm", "5",
		"--icao-only=false",
		"--debug",
	)
	require.NoError(t, err)

	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, "N12345", cfg.TailNumber)
	assert.Equal(t, "Jane", cfg.Pilot)
	assert.Equal(t, units.Kilometers, cfg.DistanceUnits)
	assert.Equal(t, units.AutoSpeedUnits, cfg.SpeedUnits)
	require.NotNil(t, cfg.SODDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *cfg.SODDate)
	assert.Equal(t, 5.0, cfg.Airports.ThresholdNM)
	assert.False(t, cfg.Airports.ICAOOnly)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SENSORS2FF_TAIL_NUMBER", "DXYZ")
	t.Setenv("SENSORS2FF_AIRPORTS_THRESHOLD_NM", "12.5")
	t.Setenv("SENSORS2FF_LOG_FORMAT", "json")

	cfg, err := loadArgs(t, "sensors.csv", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "DXYZ", cfg.TailNumber)
	assert.Equal(t, 12.5, cfg.Airports.ThresholdNM)
	assert.Equal(t, "json", cfg.Log.Format)

	// Flags win over the environment
	cfg, err = loadArgs(t, "sensors.csv", "-o", "-", "--tail-number", "DFLAG")
	require.NoError(t, err)
	assert.Equal(t, "DFLAG", cfg.TailNumber)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
distance_units: mi
attitude:
  mode: degrees
time:
  epoch_fallback: true
airports:
  path: /data/airports.csv.zst
  types: [large_airport]
source:
  imported_from: Custom importer
log:
  level: warn
`), 0o644))

	cfg, err := loadArgs(t, "--config", path, "sensors.csv", "-o", "-")
	require.NoError(t, err)

	assert.Equal(t, units.StatuteMiles, cfg.DistanceUnits)
	assert.Equal(t, track.AttitudeDegrees, cfg.Attitude)
	assert.True(t, cfg.EpochFallback)
	assert.Equal(t, "/data/airports.csv.zst", cfg.Airports.Path)
	assert.Equal(t, []string{"large_airport"}, cfg.Airports.Types)
	assert.Equal(t, "Custom importer", cfg.Source.ImportedFrom)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ConfigFileUnquotedDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sod_date: 2024-01-01
log:
  level: DEBUG
  format: JSON
`), 0o644))

	cfg, err := loadArgs(t, "--config", path, "sensors.csv", "-o", "-")
	require.NoError(t, err)

	require.NotNil(t, cfg.SODDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *cfg.SODDate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestAnchorDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    *time.Time
		wantErr bool
	}{
		{name: "unset", raw: nil},
		{name: "empty", raw: ""},
		{name: "string", raw: "2024-03-05", want: ptr(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
		{name: "yaml timestamp", raw: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), want: ptr(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
		{name: "garbage", raw: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := anchorDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input", args: []string{"-o", "-"}},
		{name: "missing output", args: []string{"sensors.csv"}},
		{name: "bad speed unit", args: []string{"sensors.csv", "-o", "-", "--speed-units", "mph"}},
		{name: "bad distance unit", args: []string{"sensors.csv", "-o", "-", "--distance-units", "ly"}},
		{name: "bad date", args: []string{"sensors.csv", "-o", "-", "--sod-date", "2024-13-01"}},
		{name: "negative threshold", args: []string{"sensors.csv", "-o", "-", "--airport-threshold-nm", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadArgs(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := loadArgs(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "sensors.csv", "-o", "-")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Input:           "in.csv",
			Output:          "-",
			SpeedSampleSize: 1,
			Log:             LogConfig{Level: "info", Format: "text"},
		}
	}

	assert.NoError(t, validate(base()))

	cfg := base()
	cfg.SpeedSampleSize = 0
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Log.Level = "trace"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Log.Format = "xml"
	assert.Error(t, validate(cfg))
}
