// Package main provides the netcheck entry point: a one-shot network
// interface analysis producing a color-coded table or a JSON report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"netcheck/internal/agent"
	"netcheck/internal/config"
	"netcheck/internal/display"
	"netcheck/internal/export"
)

// Version info is set at build time via ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	var (
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
		verboseShort = flag.Bool("v", false, "Enable debug logging (shortcut)")
		logFile      = flag.String("log-file", "", "Write logs to file")
		exportFormat = flag.String("export", "", "Export format (json)")
		output       = flag.String("output", "", "Export destination file (requires -export)")
		configFile   = flag.String("config", "", "Path to YAML configuration file")
		showVersion  = flag.Bool("version", false, "Show version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s\n", config.ToolName)
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Build Date: %s\n", buildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		os.Exit(config.ExitSuccess)
	}

	if *output != "" && *exportFormat == "" {
		fmt.Fprintln(os.Stderr, "Error: -output requires -export")
		os.Exit(config.ExitInvalidArguments)
	}
	if *exportFormat != "" && *exportFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: unsupported export format %q (json only)\n", *exportFormat)
		os.Exit(config.ExitInvalidArguments)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(config.ExitGeneralError)
	}
	if *verbose || *verboseShort {
		cfg.LogLevel = "debug"
	}

	logger, logDest, err := setupLogging(cfg.LogLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging setup error: %v\n", err)
		os.Exit(config.ExitGeneralError)
	}
	if logDest != nil {
		defer logDest.Close()
	}
	slog.SetDefault(logger)

	os.Exit(run(cfg, logger, logDest, *exportFormat, *output))
}

func run(cfg *config.Config, logger *slog.Logger, logDest *os.File, exportFormat, output string) int {
	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create agent", "error", err)
		return config.ExitGeneralError
	}

	if missing := a.MissingDependencies(); len(missing) > 0 {
		logger.Error("missing required dependencies", "commands", missing)
		return config.ExitMissingDependencies
	}

	logger.Info("starting network data collection")
	records, err := a.Collect(context.Background())
	if err != nil {
		logger.Error("collection failed", "error", err)
		return config.ExitGeneralError
	}
	logger.Info("collection complete", "interfaces", len(records))

	if exportFormat == "json" {
		data, err := export.Marshal(records, version)
		if err != nil {
			logger.Error("export failed", "error", err)
			return config.ExitGeneralError
		}
		if output != "" {
			if err := os.WriteFile(output, data, 0o644); err != nil {
				logger.Error("failed to write export file", "path", output, "error", err)
				return config.ExitGeneralError
			}
			logger.Info("exported report", "path", output)
		} else {
			fmt.Println(string(data))
		}
		return config.ExitSuccess
	}

	renderer := display.NewRenderer(cfg.Display, true)
	renderer.Render(os.Stdout, records)

	// With both debug logging and a log file, the table is appended to the
	// log file as well, uncolored.
	if logDest != nil && cfg.LogLevel == "debug" {
		fmt.Fprintln(logDest)
		display.NewRenderer(cfg.Display, false).Render(logDest, records)
	}

	return config.ExitSuccess
}

// setupLogging configures structured logging to stderr, or to the given
// file when one is set.
func setupLogging(level, logFile string) (*slog.Logger, *os.File, error) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	if logFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}
