package results

import (
	"context"

	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// Regenerate rebuilds the report from the Diff images found below base.
// With no Diff images left, stale reports are removed and "" is returned.
func Regenerate(ctx context.Context, fs storage.FileSystem, base, name, runID string) (string, error) {
	artifacts, err := paths.FindArtifacts(ctx, fs, base)
	if err != nil {
		return "", err
	}

	if len(artifacts) == 0 {
		roots, err := paths.FindSnapshotRoots(ctx, fs, base)
		if err != nil {
			return "", err
		}
		if len(roots) == 0 {
			return "", nil
		}
		return "", RemoveReports(ctx, fs, append(roots, paths.CommonPath(roots)), name)
	}

	roots := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		roots = append(roots, a.Root)
	}
	return WriteReport(ctx, fs, paths.CommonPath(roots), name, runID, artifacts)
}
