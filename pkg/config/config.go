package config

import (
	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/models"
)

// Base directory strategies
const (
	StrategyEnv    = "env"
	StrategyModule = "module"
	StrategySource = "source"
)

// DefaultReportName is the base filename of the HTML failure report
const DefaultReportName = "pixeltest_failures"

// Config represents the application configuration
type Config struct {
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Report    ReportConfig    `yaml:"report"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SnapshotsConfig holds snapshot storage and verification settings
type SnapshotsConfig struct {
	// Strategy picks how the snapshot base directory is resolved: env, module or source
	Strategy string `yaml:"strategy"`
	// BaseDir is the fixed root used by the env strategy
	BaseDir string `yaml:"base_dir"`
	// SearchRoot is scanned for go.mod files by the module strategy
	SearchRoot string `yaml:"search_root"`
	// Record forces record mode for every assertion
	Record bool `yaml:"record"`
	// NativeScale is the density of the virtual screen
	NativeScale float64 `yaml:"native_scale"`
	// MissingReference decides what a test run does without a reference image
	MissingReference models.MissingReferencePolicy `yaml:"missing_reference"`
}

// ReportConfig holds HTML report settings
type ReportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// OutputConfig holds CLI output settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Color    bool   `yaml:"color"`    // Colourise human output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Snapshots: SnapshotsConfig{
			Strategy:         StrategyEnv,
			NativeScale:      1,
			MissingReference: models.RecordAndFail,
		},
		Report: ReportConfig{
			Enabled: true,
			Name:    DefaultReportName,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Color:    true,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "text",
			Level:   "warn",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validStrategies := map[string]bool{StrategyEnv: true, StrategyModule: true, StrategySource: true}
	if !validStrategies[c.Snapshots.Strategy] {
		return &models.ValidationError{
			Field:   "snapshots.strategy",
			Message: "must be 'env', 'module', or 'source'",
		}
	}

	if c.Snapshots.NativeScale <= 0 {
		return &models.ValidationError{
			Field:   "snapshots.native_scale",
			Message: "must be positive",
		}
	}

	if !c.Snapshots.MissingReference.Valid() {
		return &models.ValidationError{
			Field:   "snapshots.missing_reference",
			Message: "must be 'record-and-fail', 'record-and-pass', or 'fail'",
		}
	}

	if c.Report.Name == "" {
		return &models.ValidationError{
			Field:   "report.name",
			Message: "must not be empty",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// LoggerOptions converts the logging section for logging.New
func (l LoggingConfig) LoggerOptions() logging.Options {
	return logging.Options{
		Enabled: l.Enabled,
		Format:  logging.Format(l.Format),
		Level:   logging.ParseLevel(l.Level),
		File:    l.File,
	}
}
