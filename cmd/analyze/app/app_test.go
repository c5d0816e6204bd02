package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/storage"
)

const matchCSV = `timestamp,lat,lon,accX,accY,accZ
2024-05-11 19:00:00,51.50000,-0.10000,0.1,0.2,9.8
2024-05-11 19:00:01,51.50004,-0.10000,0.3,0.1,9.7
2024-05-11 19:00:02,,,0.2,0.2,9.9
2024-05-11 19:00:03,51.50010,-0.10000,0.1,0.4,9.8
2024-05-11 19:00:04,51.50020,-0.10000,0.5,0.1,9.6
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "match.csv")
	require.NoError(t, os.WriteFile(path, []byte(matchCSV), 0o600))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	config := NewConfig()
	config.Input.Path = writeInput(t, dir)
	config.Input.Player = "p7"
	config.Storage.Enabled = true
	config.Storage.Database = filepath.Join(dir, "pitch.db")
	config.Output.Route = filepath.Join(dir, "route.geojson")
	config.Output.Samples = filepath.Join(dir, "report.json")

	require.NoError(t, Run(context.Background(), config, discardLogger()))

	t.Run("report", func(t *testing.T) {
		p, err := os.ReadFile(config.Output.Samples)
		require.NoError(t, err)

		var report metrics.Report
		require.NoError(t, json.Unmarshal(p, &report))
		assert.Len(t, report.Samples, 3)
		assert.Equal(t, 3, report.Summary.SampleCount)
		assert.InDelta(t, 0.0222, report.Summary.TotalDistanceKm, 0.0005)
		require.NotNil(t, report.Summary.Accelerometer)
		assert.Equal(t, 5, report.Summary.Accelerometer.X.Count)
	})

	t.Run("route", func(t *testing.T) {
		p, err := os.ReadFile(config.Output.Route)
		require.NoError(t, err)

		fc, err := geojson.UnmarshalFeatureCollection(p)
		require.NoError(t, err)
		require.Len(t, fc.Features, 3)
		assert.Equal(t, "p7", fc.Features[0].Properties.MustString("player"))
	})

	t.Run("storage", func(t *testing.T) {
		ctx := context.Background()
		store := storage.NewSqliteStore(config.Storage.Database)
		defer store.Close()

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "p7", sessions[0].Player)
		assert.Equal(t, config.Input.Path, sessions[0].Source)

		summary, err := store.Summary(ctx, sessions[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Summary.SampleCount)
		assert.Equal(t, metrics.DefaultThresholds, summary.Thresholds)

		r, err := store.ReadSamples(ctx, sessions[0].ID)
		require.NoError(t, err)
		defer r.Close()
		samples, err := storage.ReadAll(ctx, r)
		require.NoError(t, err)
		assert.Len(t, samples, 5)
	})
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("no input", func(t *testing.T) {
		assert.Error(t, Run(context.Background(), NewConfig(), discardLogger()))
	})

	t.Run("missing input", func(t *testing.T) {
		config := NewConfig()
		config.Input.Path = filepath.Join(dir, "missing.csv")
		assert.ErrorIs(t, Run(context.Background(), config, discardLogger()), os.ErrNotExist)
	})

	t.Run("non-monotonic", func(t *testing.T) {
		path := filepath.Join(dir, "backwards.csv")
		require.NoError(t, os.WriteFile(path, []byte("timestamp,lat,lon\n"+
			"2024-05-11 19:00:05,51.5,-0.1\n"+
			"2024-05-11 19:00:01,51.5001,-0.1\n"), 0o600))

		config := NewConfig()
		config.Input.Path = path
		config.Metrics.Ordering = metrics.OrderReject
		assert.ErrorIs(t, Run(context.Background(), config, discardLogger()), metrics.ErrNonMonotonic)
	})

	t.Run("missing storage directory", func(t *testing.T) {
		config := NewConfig()
		config.Input.Path = writeInput(t, dir)
		config.Storage.Enabled = true
		config.Storage.DataDirectory = filepath.Join(dir, "nope")
		assert.ErrorIs(t, Run(context.Background(), config, discardLogger()), os.ErrNotExist)
	})
}

func TestCreateStorageTimestamped(t *testing.T) {
	dir := t.TempDir()

	store, err := createStorage(&StorageConfig{DataDirectory: dir})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dir, filepath.Dir(store.Path()))
	assert.Regexp(t, `^pitch_session_\d{8}_\d{6}\.sqlite$`, filepath.Base(store.Path()))
}
