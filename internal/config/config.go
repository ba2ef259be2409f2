package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sensors2ff/internal/airports"
	"sensors2ff/internal/timeres"
	"sensors2ff/internal/track"
	"sensors2ff/internal/units"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "SENSORS2FF"

// Config holds all configuration for one conversion
type Config struct {
	Input           string
	Output          string
	TailNumber      string
	Pilot           string
	DistanceUnits   units.DistanceUnit
	SpeedUnits      units.SpeedUnit
	SpeedSampleSize int
	SODDate         *time.Time
	EpochFallback   bool
	Attitude        track.AttitudeMode
	AliasesPath     string
	DBPath          string
	Debug           bool
	Airports        AirportsConfig
	Source          SourceConfig
	Log             LogConfig
}

// AirportsConfig controls aerodrome detection
type AirportsConfig struct {
	Path        string
	ThresholdNM float64
	ICAOOnly    bool
	Types       []string
}

// SourceConfig holds the literal metadata values describing the capture device
type SourceConfig struct {
	Attitude     string
	GPS          string
	ImportedFrom string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Flags returns the command-line flag set; names match config keys
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sensors2ff", pflag.ContinueOnError)
	fs.String("config", "", "Path to config file (YAML)")
	fs.StringP("output", "o", "", "Output ForeFlight CSV (- for stdout)")
	fs.String("tail-number", "", `Tail Number for Section 1 (default "DEABC")`)
	fs.String("pilot", "", "Pilot for Section 1")
	fs.String("distance-units", "", "Total distance units: nm|km|mi (default nm)")
	fs.String("speed-units", "", "Groundspeed units in input: kts|mps|kmh|auto (default kts)")
	fs.String("sod-date", "", "Anchor date YYYY-MM-DD if only seconds-of-day timestamps are present")
	fs.String("airports", "", "Path to airports CSV (OurAirports format preferred, .zst allowed)")
	fs.Float64("airport-threshold-nm", 0, "Max radius to accept nearest airport (default 20)")
	fs.Bool("icao-only", true, "Only accept 4-letter ICAO idents")
	fs.String("db", "", "SQLite cache for airport directories and conversion history")
	fs.Bool("debug", false, "Verbose diagnostics")
	return fs
}

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"output":               "output",
	"tail-number":          "tail_number",
	"pilot":                "pilot",
	"distance-units":       "distance_units",
	"speed-units":          "speed_units",
	"sod-date":             "sod_date",
	"airports":             "airports.path",
	"airport-threshold-nm": "airports.threshold_nm",
	"icao-only":            "airports.icao_only",
	"db":                   "db_path",
	"debug":                "debug",
}

// Load loads configuration from defaults, config file, .env, environment and flags
// Only flags the user actually set override lower layers. The first positional
// argument is the input file.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// A missing .env is the normal case
	_ = godotenv.Load(".env")

	v := viper.New()

	// Set defaults
	v.SetDefault("tail_number", "DEABC")
	v.SetDefault("pilot", "")
	v.SetDefault("distance_units", "nm")
	v.SetDefault("speed_units", "kts")
	v.SetDefault("speed_sample_size", 1000)
	v.SetDefault("sod_date", "")
	v.SetDefault("time.epoch_fallback", false)
	v.SetDefault("attitude.mode", "auto")
	v.SetDefault("schema.aliases_path", "")
	v.SetDefault("db_path", "")
	v.SetDefault("debug", false)
	v.SetDefault("airports.path", "")
	v.SetDefault("airports.threshold_nm", 20.0)
	v.SetDefault("airports.icao_only", true)
	v.SetDefault("airports.types", airports.DefaultTypes)
	v.SetDefault("source.attitude", "Stratux")
	v.SetDefault("source.gps", "Stratux")
	v.SetDefault("source.imported_from", "Stratux sensors converter")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	// Set config file name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Set config file search paths
	v.AddConfigPath("/etc/sensors2ff")
	v.AddConfigPath(".")

	configPath := os.Getenv(EnvPrefix + "_CONFIG_PATH")
	if fs != nil {
		if p, err := fs.GetString("config"); err == nil && p != "" {
			configPath = p
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		if fs.NArg() > 0 {
			v.Set("input", fs.Arg(0))
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	distance, err := units.ParseDistanceUnit(v.GetString("distance_units"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	speed, err := units.ParseSpeedUnit(v.GetString("speed_units"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	attitude, err := track.ParseAttitudeMode(v.GetString("attitude.mode"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Build config struct
	cfg := &Config{
		Input:           v.GetString("input"),
		Output:          v.GetString("output"),
		TailNumber:      v.GetString("tail_number"),
		Pilot:           v.GetString("pilot"),
		DistanceUnits:   distance,
		SpeedUnits:      speed,
		SpeedSampleSize: v.GetInt("speed_sample_size"),
		EpochFallback:   v.GetBool("time.epoch_fallback"),
		Attitude:        attitude,
		AliasesPath:     v.GetString("schema.aliases_path"),
		DBPath:          v.GetString("db_path"),
		Debug:           v.GetBool("debug"),
		Airports: AirportsConfig{
			Path:        v.GetString("airports.path"),
			ThresholdNM: v.GetFloat64("airports.threshold_nm"),
			ICAOOnly:    v.GetBool("airports.icao_only"),
			Types:       v.GetStringSlice("airports.types"),
		},
		Source: SourceConfig{
			Attitude:     v.GetString("source.attitude"),
			GPS:          v.GetString("source.gps"),
			ImportedFrom: v.GetString("source.imported_from"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}

	date, err := anchorDate(v.Get("sod_date"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.SODDate = date

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if cfg.Debug {
		cfg.Log.Level = "debug"
	}

	// Validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// anchorDate reads sod_date, which YAML decodes to a time.Time when unquoted
func anchorDate(raw interface{}) (*time.Time, error) {
	if t, ok := raw.(time.Time); ok {
		date := timeres.Midnight(t)
		return &date, nil
	}

	d := strings.TrimSpace(cast.ToString(raw))
	if d == "" {
		return nil, nil
	}
	date, err := timeres.ParseDate(d)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.Input == "" {
		return fmt.Errorf("input file is required")
	}

	if cfg.Output == "" {
		return fmt.Errorf("output file is required")
	}

	if cfg.SpeedSampleSize <= 0 {
		return fmt.Errorf("speed_sample_size must be greater than 0")
	}

	if cfg.Airports.ThresholdNM < 0 {
		return fmt.Errorf("airports.threshold_nm must not be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[cfg.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
