package cli

import (
	"context"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/pixeltest/pkg/output"
	"github.com/sdejongh/pixeltest/pkg/paths"
)

// processArtifacts runs fn over artifacts with a bounded worker pool,
// reporting progress through formatter. Per-artifact errors land in the
// returned report rather than aborting the batch.
func processArtifacts(ctx context.Context, command, done string, artifacts []paths.Artifact, parallel int,
	formatter output.Formatter, w io.Writer, fn func(context.Context, paths.Artifact) error) (*output.Report, error) {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	total := len(artifacts)
	if err := formatter.Start(w, command, total); err != nil {
		return nil, err
	}

	entries := make([]output.Entry, total)

	var (
		mu      sync.Mutex
		current int
	)
	notify := func(update output.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if update.Type != "artifact_start" {
			current++
		}
		update.Current = current
		update.Total = total
		formatter.Progress(update)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, a := range artifacts {
		i, a := i, a
		g.Go(func() error {
			notify(output.ProgressUpdate{Type: "artifact_start", Artifact: a})
			if err := fn(gctx, a); err != nil {
				entries[i] = output.Entry{Artifact: a, Status: output.StatusError, Error: err.Error()}
				notify(output.ProgressUpdate{Type: "artifact_error", Artifact: a, Error: err})
				return nil
			}
			entries[i] = output.Entry{Artifact: a, Status: done}
			notify(output.ProgressUpdate{Type: "artifact_complete", Artifact: a})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &output.Report{Command: command, Entries: entries}, nil
}
