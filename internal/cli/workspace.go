package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/config"
	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/output"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// workspace is what every snapshot command needs: configuration, the
// directory to scan, the filesystem and a logger
type workspace struct {
	cfg    *config.Config
	base   string
	fs     storage.FileSystem
	logger logging.Logger
	out    io.Writer

	root logging.Logger
}

// loadConfig reads --config when given, otherwise the default file, then
// applies the PIXELTEST_* environment
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile == "" {
		return config.Load()
	}

	cfg, err := config.LoadFromFile(globalFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveBase picks the directory to scan: --base, then the configured base
// directory or search root, then the working directory
func resolveBase(cfg *config.Config) (string, error) {
	base := globalFlags.Base
	if base == "" {
		base = cfg.Snapshots.BaseDir
	}
	if base == "" {
		base = cfg.Snapshots.SearchRoot
	}
	if base == "" {
		return os.Getwd()
	}
	return homedir.Expand(base)
}

func newWorkspace(cmd *cobra.Command) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	base, err := resolveBase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	fs, err := storage.NewLocal("")
	if err != nil {
		return nil, err
	}

	opts := cfg.Logging.LoggerOptions()
	if globalFlags.Verbose {
		opts.Enabled = true
		opts.Level = logging.DebugLevel
	}
	opts.Writer = cmd.ErrOrStderr()
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &workspace{
		cfg:    cfg,
		base:   base,
		fs:     fs,
		logger: logger.WithFields(logging.Fields{"command": cmd.Name()}),
		out:    cmd.OutOrStdout(),
		root:   logger,
	}, nil
}

// formatter builds the output formatter; format overrides the configured one when set
func (w *workspace) formatter(format string, progress bool) output.Formatter {
	if format == "" {
		format = w.cfg.Output.Format
	}
	return output.New(output.Options{
		Format:   format,
		Progress: progress && w.cfg.Output.Progress,
		Color:    w.cfg.Output.Color,
		Quiet:    globalFlags.Quiet,
	}, w.out)
}

func (w *workspace) close() {
	w.root.Close()
}

func validateFormat(format string) error {
	switch format {
	case "", "human", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (use: human, json)", format)
}
