package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roman-kulish/pitch-telemetry/cmd/analyze/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	var configPath, inputPath, dbPath, routePath, samplesPath string
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.StringVar(&inputPath, "i", "", "Path to the samples CSV file, overrides input.path")
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite database, enables storage")
	flag.StringVar(&routePath, "route", "", "Write the route as GeoJSON to this file")
	flag.StringVar(&samplesPath, "samples", "", "Write the augmented samples and summary as JSON to this file")
	flag.Parse()

	config := app.NewConfig()
	if configPath != "" {
		var err error
		if config, err = app.LoadConfig(configPath); err != nil {
			logger.Error(fmt.Sprintf("failed to load configuration file: %s", err.Error()), slog.String("path", configPath))
			os.Exit(1)
		}
	}

	if inputPath != "" {
		config.Input.Path = inputPath
	}
	if dbPath != "" {
		config.Storage.Enabled = true
		config.Storage.Database = dbPath
	}
	if routePath != "" {
		config.Output.Route = routePath
	}
	if samplesPath != "" {
		config.Output.Samples = samplesPath
	}

	logLevel.Set(config.LogLevel())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
