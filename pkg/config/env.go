package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/sdejongh/pixeltest/pkg/models"
)

// Environment variables read by Load
const (
	EnvConfig      = "PIXELTEST_CONFIG"
	EnvBaseDir     = "PIXELTEST_BASE_DIR"
	EnvRecord      = "PIXELTEST_RECORD"
	EnvNativeScale = "PIXELTEST_NATIVE_SCALE"
	EnvReportName  = "PIXELTEST_REPORT_NAME"
	EnvStrategy    = "PIXELTEST_STRATEGY"
	EnvLogLevel    = "PIXELTEST_LOG_LEVEL"
)

// Load reads the configuration file named by PIXELTEST_CONFIG, or the default
// file when that is unset, and then applies environment overrides.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path := getenv(EnvConfig); path != "" {
		cfg, err = LoadFromFile(path)
	} else {
		cfg, err = LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any PIXELTEST_* variables that are set
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvBaseDir); v != "" {
		cfg.Snapshots.BaseDir = v
		// An explicit base directory implies the env strategy
		cfg.Snapshots.Strategy = StrategyEnv
	}

	if v := getenv(EnvStrategy); v != "" {
		cfg.Snapshots.Strategy = strings.ToLower(v)
	}

	if v := getenv(EnvRecord); v != "" {
		record, err := parseBool(v)
		if err != nil {
			return &models.ValidationError{Field: EnvRecord, Message: err.Error()}
		}
		cfg.Snapshots.Record = record
	}

	if v := getenv(EnvNativeScale); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return &models.ValidationError{Field: EnvNativeScale, Message: "must be a positive number"}
		}
		cfg.Snapshots.NativeScale = scale
	}

	if v := getenv(EnvReportName); v != "" {
		cfg.Report.Name = strings.TrimSuffix(v, ".html")
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	var err error
	if cfg.Snapshots.BaseDir, err = homedir.Expand(cfg.Snapshots.BaseDir); err != nil {
		return fmt.Errorf("failed to expand base directory: %w", err)
	}
	if cfg.Snapshots.SearchRoot, err = homedir.Expand(cfg.Snapshots.SearchRoot); err != nil {
		return fmt.Errorf("failed to expand search root: %w", err)
	}
	if cfg.Logging.File, err = homedir.Expand(cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to expand log file: %w", err)
	}

	return nil
}

// parseBool accepts strconv booleans plus yes/no and on/off
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
