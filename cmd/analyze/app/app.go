package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/pitch-telemetry/internal/loader"
	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/storage"
	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
	"github.com/roman-kulish/pitch-telemetry/internal/track"
)

// Run loads the samples, computes their metrics and writes the configured outputs.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if config.Input.Path == "" {
		return errors.New("no input file specified")
	}

	var source telemetry.Source = loader.NewFile(config.Input.Path)
	samples, err := source.Samples()
	if err != nil {
		return fmt.Errorf("loading samples: %w", err)
	}
	if config.Input.Player != "" {
		for i := range samples {
			samples[i].Player = config.Input.Player
		}
	}
	logger.Info("samples loaded", slog.String("path", config.Input.Path), slog.Int("count", len(samples)))

	engine, err := metrics.NewEngine(
		metrics.WithThresholds(config.Metrics.Thresholds),
		metrics.WithOrdering(config.Metrics.Ordering),
	)
	if err != nil {
		return fmt.Errorf("creating metrics engine: %w", err)
	}

	report, err := engine.Compute(samples)
	if err != nil {
		return fmt.Errorf("computing metrics: %w", err)
	}
	logSummary(logger, report)

	route := track.NewRoute(samples)

	if config.Storage.Enabled {
		if err = persist(ctx, config, samples, route.Player, report, logger); err != nil {
			return err
		}
	}

	if config.Output.Route != "" {
		if err = writeJSON(config.Output.Route, route.FeatureCollection()); err != nil {
			return fmt.Errorf("writing route: %w", err)
		}
		logger.Info("route written", slog.String("path", config.Output.Route), slog.Int("points", len(route.Line)))
	}

	if config.Output.Samples != "" {
		if err = writeJSON(config.Output.Samples, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", slog.String("path", config.Output.Samples), slog.Int("samples", len(report.Samples)))
	}

	return nil
}

func logSummary(logger *slog.Logger, report *metrics.Report) {
	s := report.Summary
	logger.Info("metrics computed",
		slog.Group("summary",
			slog.Int("samples", s.SampleCount),
			slog.String("duration", (time.Duration(s.DurationS*float64(time.Second))).Round(time.Second).String()),
			slog.String("totalDistance", humanize.SIWithDigits(s.TotalDistanceKm*1000, 1, "m")),
			slog.String("highSpeedDistance", humanize.SIWithDigits(s.HighSpeedDistanceKm*1000, 1, "m")),
			slog.String("averageSpeed", humanize.FormatFloat("#.##", s.AverageSpeedKmh)+" km/h"),
			slog.String("maxSpeed", humanize.FormatFloat("#.##", s.MaxSpeedKmh)+" km/h"),
			slog.Int("sprints", s.SprintCount),
			slog.Int("highAccelerations", s.HighAccelerationCount),
			slog.Int("highDecelerations", s.HighDecelerationCount),
		),
		slog.Group("thresholds",
			slog.Float64("highSpeedMps", report.Thresholds.HighSpeedMps),
			slog.Float64("sprintMps", report.Thresholds.SprintMps),
			slog.Float64("accelerationMps2", report.Thresholds.AccelerationMps2),
		),
	)

	if a := s.Accelerometer; a != nil && a.Magnitude != nil {
		logger.Info("accelerometer",
			slog.Int("count", a.Magnitude.Count),
			slog.Float64("meanMagnitude", a.Magnitude.Mean),
			slog.Float64("maxMagnitude", a.Magnitude.Max),
		)
	}
}

func persist(ctx context.Context, config *Config, samples []telemetry.Sample, player string, report *metrics.Report, logger *slog.Logger) (err error) {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", cErr)
		}
	}()

	sessionID, err := store.CreateSession(ctx, player, config.Input.Path, config.Metrics)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if err = store.StoreSamples(ctx, sessionID, samples); err != nil {
		return fmt.Errorf("storing samples: %w", err)
	}
	if err = store.StoreSummary(ctx, sessionID, report.Thresholds, &report.Summary); err != nil {
		return fmt.Errorf("storing summary: %w", err)
	}

	logger.Info("session stored", slog.Int64("sessionID", sessionID), slog.String("database", store.Path()))
	return nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	opts := []storage.StoreOption{storage.WithMaxBatchSize(config.MaxBatchSize)}
	if config.Database != "" {
		return storage.NewSqliteStore(config.Database, opts...), nil
	}

	dir := config.DataDirectory
	if dir == "" {
		dir = defaultStorageDir
	}

	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dir, err)
		}
		return nil, fmt.Errorf("checking storage directory: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dir)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("pitch_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath, opts...), nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
