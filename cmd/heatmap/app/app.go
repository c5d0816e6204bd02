package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/pitch-telemetry/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

func renderSession(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.MinTimestamp != nil && config.MaxTimestamp != nil:
		opts = append(opts, storage.WithTimeRange(config.MinTimestamp.UTC(), config.MaxTimestamp.UTC()))

		filters = append(filters,
			slog.String("minTimestamp", config.MinTimestamp.UTC().Format(time.DateTime)),
			slog.String("maxTimestamp", config.MaxTimestamp.UTC().Format(time.DateTime)))

	case config.MinTimestamp != nil:
		opts = append(opts, storage.WithStartTime(config.MinTimestamp.UTC()))
		filters = append(filters, slog.String("minTimestamp", config.MinTimestamp.UTC().Format(time.DateTime)))

	case config.MaxTimestamp != nil:
		opts = append(opts, storage.WithEndTime(config.MaxTimestamp.UTC()))
		filters = append(filters, slog.String("maxTimestamp", config.MaxTimestamp.UTC().Format(time.DateTime)))
	}

	logger.Debug("iterator configuration", filters...)

	iter, err := store.ReadSamples(ctx, config.SessionID, opts...)
	if err != nil {
		return fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}
	defer iter.Close()

	heat := NewHeatData(config.Width, config.Height)
	for iter.Next(ctx) {
		heat.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return err
	}

	if err = heat.Finish(config.Radius); err != nil {
		return fmt.Errorf("session %d: %w", config.SessionID, err)
	}

	attrs := []any{
		slog.Int("samples", heat.Samples),
		slog.String("distance", humanize.SIWithDigits(heat.DistanceM, 1, "m")),
		slog.Float64("maxDensity", heat.Grid.Max()),
	}
	if summary, err := store.Summary(ctx, config.SessionID); err == nil {
		attrs = append(attrs,
			slog.String("totalDistance", humanize.SIWithDigits(summary.Summary.TotalDistanceKm*1000, 1, "m")),
			slog.Int("sprints", summary.Summary.SprintCount))
	} else if !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("reading summary: %w", err)
	}
	logger.Info("finished reading samples", slog.Group("stats", attrs...))

	renderer, err := NewHeatmapRenderer(RenderConfig{
		Location:      config.TimeZone,
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating heatmap renderer: %w", err)
	}

	logger.Info("rendering heatmap",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", heat.Width),
			slog.Int("height", heat.Height),
		))

	img, err := renderer.Render(heat)
	if err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch format {
	case ImageJPEG:
		return jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return png.Encode(out, img)
	}
}
