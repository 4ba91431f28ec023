package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the pixeltest command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pixeltest",
		Short: "Manage visual regression snapshots",
		Long: `pixeltest inspects and maintains the snapshot trees written by the
pixeltest Go testing library: list failing snapshots, regenerate the HTML
failure report, approve new references and clean up artifacts.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewApproveCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
