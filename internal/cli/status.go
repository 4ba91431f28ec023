package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/output"
	"github.com/sdejongh/pixeltest/pkg/paths"
)

// StatusFlags holds status command flags
type StatusFlags struct {
	Output   string
	ExitCode bool
}

var statusFlags StatusFlags

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List failing snapshots",
		Long: `List every snapshot that has a Diff image below the base directory,
grouped by <module>Snapshots tree, with the size of each diff.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	cmd.Flags().StringVarP(&statusFlags.Output, "output", "o", "", "output format: human, json (default from config)")
	cmd.Flags().BoolVar(&statusFlags.ExitCode, "exit-code", false, "exit with an error when snapshots are failing")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := validateFormat(statusFlags.Output); err != nil {
		return err
	}

	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	ctx := cmd.Context()
	start := time.Now()

	artifacts, err := paths.FindArtifacts(ctx, ws.fs, ws.base)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", ws.base, err)
	}

	formatter := ws.formatter(statusFlags.Output, false)
	if err := formatter.Start(ws.out, "status", len(artifacts)); err != nil {
		return err
	}

	report := &output.Report{Command: "status", Base: ws.base}
	for _, a := range artifacts {
		report.Entries = append(report.Entries, output.Entry{Artifact: a, Status: output.StatusFailing})
	}
	report.Duration = time.Since(start)

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if statusFlags.ExitCode && len(artifacts) > 0 {
		return fmt.Errorf("%d failing snapshot(s)", len(artifacts))
	}
	return nil
}
