package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otiai10/copy"
	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/output"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/results"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// ApproveFlags holds approve command flags
type ApproveFlags struct {
	Group    string
	Parallel int
}

var approveFlags ApproveFlags

// NewApproveCommand creates the approve command
func NewApproveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Accept failing snapshots as the new references",
		Long: `Copy every Failure image over its Reference image, then delete the
matching Diff and Failure images. Use --group to approve a single test file.`,
		Args: cobra.NoArgs,
		RunE: runApprove,
	}

	cmd.Flags().StringVarP(&approveFlags.Group, "group", "g", "", "only approve snapshots of this group")
	cmd.Flags().IntVarP(&approveFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: number of CPUs)")

	return cmd
}

func runApprove(cmd *cobra.Command, args []string) error {
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
	if approveFlags.Group != "" {
		artifacts = filterGroup(artifacts, approveFlags.Group)
	}

	formatter := ws.formatter("", true)
	report, err := processArtifacts(ctx, "approve", output.StatusApproved, artifacts, approveFlags.Parallel, formatter, ws.out,
		func(ctx context.Context, a paths.Artifact) error {
			return approve(ctx, ws.fs, a)
		})
	if err != nil {
		return err
	}
	report.Base = ws.base

	path, err := results.Regenerate(ctx, ws.fs, ws.base, ws.cfg.Report.Name, uuid.NewString())
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("failed to refresh report: %v", err))
	}
	report.ReportPath = path
	report.Duration = time.Since(start)

	ws.logger.Info(ctx, "snapshots approved", logging.Fields{
		"approved": report.Count(output.StatusApproved),
		"errors":   report.Count(output.StatusError),
	})

	if err := formatter.Complete(report); err != nil {
		return err
	}
	if n := report.Count(output.StatusError); n > 0 {
		return fmt.Errorf("%d snapshot(s) could not be approved", n)
	}
	return nil
}

// approve promotes the Failure image to Reference and drops the artifacts
func approve(ctx context.Context, fs storage.FileSystem, a paths.Artifact) error {
	exists, err := fs.Exists(ctx, a.Failure)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("failure image missing: %s", a.Failure)
	}

	if err := copy.Copy(a.Failure, a.Reference, copy.Options{Sync: true}); err != nil {
		return fmt.Errorf("failed to promote %s: %w", a.Name, err)
	}
	if err := fs.Remove(ctx, a.Diff); err != nil {
		return err
	}
	return fs.Remove(ctx, a.Failure)
}

func filterGroup(artifacts []paths.Artifact, group string) []paths.Artifact {
	var out []paths.Artifact
	for _, a := range artifacts {
		if a.Group == group {
			out = append(out, a)
		}
	}
	return out
}
