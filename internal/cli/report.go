package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/results"
)

// ReportFlags holds report command flags
type ReportFlags struct {
	Name string
}

var reportFlags ReportFlags

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate the HTML failure report",
		Long: `Rebuild the HTML failure report from the Diff images on disk.
The report is written to the common parent of every failing <module>Snapshots
tree. When nothing is failing, stale reports are removed instead.`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	cmd.Flags().StringVar(&reportFlags.Name, "name", "", "report file name without extension (default from config)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	name := strings.TrimSuffix(reportFlags.Name, ".html")
	if name == "" {
		name = ws.cfg.Report.Name
	}

	ctx := cmd.Context()
	runID := uuid.NewString()
	path, err := results.Regenerate(ctx, ws.fs, ws.base, name, runID)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	ws.logger.Info(ctx, "report regenerated", logging.Fields{"run": runID, "path": path})
	if globalFlags.Quiet {
		return nil
	}
	if path == "" {
		fmt.Fprintln(ws.out, "No failing snapshots, no report written")
		return nil
	}
	fmt.Fprintf(ws.out, "Report: %s\n", path)
	return nil
}
