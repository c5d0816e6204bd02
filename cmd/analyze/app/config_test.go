package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
input:
  path: match.csv
  player: p7
metrics:
  ordering: sort
  thresholds:
    sprintMps: 7
storage:
  enabled: true
  maxBatchSize: 50
output:
  route: route.geojson
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.LogLevel())
	assert.Equal(t, "match.csv", config.Input.Path)
	assert.Equal(t, "p7", config.Input.Player)
	assert.Equal(t, metrics.OrderSort, config.Metrics.Ordering)
	assert.Equal(t, metrics.Thresholds{HighSpeedMps: 5, SprintMps: 7, AccelerationMps2: 2}, config.Metrics.Thresholds)
	assert.True(t, config.Storage.Enabled)
	assert.Equal(t, defaultStorageDir, config.Storage.DataDirectory)
	assert.Equal(t, 50, config.Storage.MaxBatchSize)
	assert.Equal(t, "route.geojson", config.Output.Route)
	assert.Empty(t, config.Output.Samples)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "settings: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, config.LogLevel())
	assert.Equal(t, metrics.OrderAsGiven, config.Metrics.Ordering)
	assert.Equal(t, metrics.DefaultThresholds, config.Metrics.Thresholds)
	assert.Equal(t, storage.DefaultMaxBatchSize, config.Storage.MaxBatchSize)
	assert.False(t, config.Storage.Enabled)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{name: "log level", content: "settings:\n  logLevel: loud\n"},
		{name: "ordering", content: "metrics:\n  ordering: random\n", target: metrics.ErrInvalidOrdering},
		{name: "negative threshold", content: "metrics:\n  thresholds:\n    sprintMps: -1\n", target: metrics.ErrInvalidThreshold},
		{name: "batch size", content: "storage:\n  maxBatchSize: -5\n"},
		{name: "storage location", content: "storage:\n  enabled: true\n  dataDirectory: \"\"\n"},
		{name: "malformed", content: "settings: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
