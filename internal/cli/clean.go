package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/output"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/results"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// CleanFlags holds clean command flags
type CleanFlags struct {
	Parallel int
}

var cleanFlags CleanFlags

// NewCleanCommand creates the clean command
func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove Diff and Failure images and the failure report",
		Long: `Delete every Diff and Failure image below the base directory together
with the HTML failure report. Reference images are left untouched.`,
		Args: cobra.NoArgs,
		RunE: runClean,
	}

	cmd.Flags().IntVarP(&cleanFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: number of CPUs)")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
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
	roots, err := paths.FindSnapshotRoots(ctx, ws.fs, ws.base)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", ws.base, err)
	}

	formatter := ws.formatter("", true)
	report, err := processArtifacts(ctx, "clean", output.StatusRemoved, artifacts, cleanFlags.Parallel, formatter, ws.out,
		func(ctx context.Context, a paths.Artifact) error {
			var result *multierror.Error
			for _, path := range []string{a.Diff, a.Failure} {
				if err := ws.fs.Remove(ctx, path); err != nil {
					result = multierror.Append(result, err)
				}
			}
			return result.ErrorOrNil()
		})
	if err != nil {
		return err
	}
	report.Base = ws.base

	// Failure images without a Diff and the reports themselves
	var result *multierror.Error
	if err := removeOrphans(ctx, ws.fs, roots); err != nil {
		result = multierror.Append(result, err)
	}
	if len(roots) > 0 {
		dirs := append(roots, paths.CommonPath(roots))
		if err := results.RemoveReports(ctx, ws.fs, dirs, ws.cfg.Report.Name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	report.Duration = time.Since(start)

	ws.logger.Info(ctx, "snapshot artifacts cleaned", logging.Fields{
		"removed": report.Count(output.StatusRemoved),
		"roots":   len(roots),
	})

	if err := formatter.Complete(report); err != nil {
		return err
	}
	if report.Count(output.StatusError) > 0 || len(report.Errors) > 0 {
		return fmt.Errorf("clean finished with errors")
	}
	return nil
}

// removeOrphans deletes whatever is left in the Diff and Failure directories of roots
func removeOrphans(ctx context.Context, fs storage.FileSystem, roots []string) error {
	var result *multierror.Error
	for _, root := range roots {
		for _, imageType := range []models.ImageType{models.ImageDiff, models.ImageFailure} {
			files, err := fs.List(ctx, filepath.Join(root, imageType.DirectoryName()))
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			for _, f := range files {
				if err := fs.Remove(ctx, f.Path); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
	}
	return result.ErrorOrNil()
}
