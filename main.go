package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"sensors2ff/internal/config"
	"sensors2ff/internal/converter"
	"sensors2ff/internal/geo"

	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// stdout may carry the CSV, so logs never go there
	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
		}
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := config.Flags()
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sensors2ff <input.csv> -o <output.csv> [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return converter.ExitOK
		}
		return converter.ExitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		// Use basic logging for config errors since logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		fs.Usage()
		return converter.ExitUsage
	}

	initLogger(cfg)

	report, err := converter.Run(cfg, os.Stdout)
	if err != nil {
		slog.Error("Conversion failed", "input", cfg.Input, "error", err)
		return converter.ExitCode(err)
	}

	s := report.Result.Summary
	slog.Debug("Conversion summary",
		"rows", s.Accepted,
		"skipped", s.Skipped,
		"start", s.FirstTime,
		"end", s.LastTime,
		"distance_nm", s.DistanceMeters/geo.MetersPerNauticalMile,
		"speed_units", report.Result.SpeedUnit,
		"origin", report.Aerodromes.Origin.Ident,
		"destination", report.Aerodromes.Destination.Ident,
		"output", cfg.Output,
		"conversion_id", report.Conversion.ID,
	)
	if cfg.Output != converter.StdoutFilename {
		slog.Info("Wrote ForeFlight track", "output", cfg.Output, "samples", s.Accepted)
	}

	return converter.ExitOK
}
