package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/storage"
)

const defaultStorageDir = "data"

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Input    InputConfig   `yaml:"input"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Storage  StorageConfig `yaml:"storage"`
	Output   OutputConfig  `yaml:"output"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// InputConfig represents the samples source
type InputConfig struct {
	Path   string `yaml:"path"`   // CSV file with tracking samples
	Player string `yaml:"player"` // Player label, overrides the player column
}

// MetricsConfig represents metrics engine settings
type MetricsConfig struct {
	Ordering   metrics.Ordering   `yaml:"ordering" json:"ordering"`
	Thresholds metrics.Thresholds `yaml:"thresholds" json:"thresholds"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"` // Directory for timestamped database files
	Database      string `yaml:"database"`      // Explicit database file, overrides DataDirectory
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// OutputConfig represents optional export files
type OutputConfig struct {
	Route   string `yaml:"route"`   // GeoJSON route export
	Samples string `yaml:"samples"` // JSON report with augmented samples
}

// NewConfig returns the configuration used when a setting is not specified.
func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel: slog.LevelInfo.String(),
		},
		Metrics: MetricsConfig{
			Ordering:   metrics.OrderAsGiven,
			Thresholds: metrics.DefaultThresholds,
		},
		Storage: StorageConfig{
			DataDirectory: defaultStorageDir,
			MaxBatchSize:  storage.DefaultMaxBatchSize,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := NewConfig()
	if err = yaml.Unmarshal(p, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Settings.LogLevel)
	}

	ordering, err := metrics.ParseOrdering(string(c.Metrics.Ordering))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	c.Metrics.Ordering = ordering

	if err = c.Metrics.Thresholds.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if c.Storage.MaxBatchSize < 0 {
		return fmt.Errorf("storage: max batch size must not be negative: %d", c.Storage.MaxBatchSize)
	}
	if c.Storage.Enabled && c.Storage.Database == "" && c.Storage.DataDirectory == "" {
		return errors.New("storage: either database or dataDirectory must be set")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Settings.LogLevel))
	return level
}
