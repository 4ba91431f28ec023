package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the pixeltest configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Show the configuration after the config file and PIXELTEST_* environment variables are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Strategy: %s\n", cfg.Snapshots.Strategy)
			fmt.Fprintf(w, "Base Directory: %s\n", valueOr(cfg.Snapshots.BaseDir, "(unset)"))
			fmt.Fprintf(w, "Search Root: %s\n", valueOr(cfg.Snapshots.SearchRoot, "(working directory)"))
			fmt.Fprintf(w, "Record: %t\n", cfg.Snapshots.Record)
			fmt.Fprintf(w, "Native Scale: %.1f\n", cfg.Snapshots.NativeScale)
			fmt.Fprintf(w, "Missing Reference: %s\n", cfg.Snapshots.MissingReference)
			fmt.Fprintf(w, "Report: %t (%s.html)\n", cfg.Report.Enabled, cfg.Report.Name)
			fmt.Fprintf(w, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(w, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(w, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Default(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
