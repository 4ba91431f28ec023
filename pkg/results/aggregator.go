package results

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// FailureInfo locates the Diff directory of a failing test group
type FailureInfo struct {
	// Root is the <module>Snapshots directory
	Root     string
	Group    string
	Function string
}

func (f FailureInfo) key() string {
	return filepath.Join(f.Root, f.Group)
}

// Aggregator collects snapshot failures for one test run and writes a single
// HTML report when the run ends. It is safe for concurrent use.
type Aggregator struct {
	fs     storage.FileSystem
	name   string
	logger logging.Logger

	mu       sync.Mutex
	runID    string
	failures map[string]FailureInfo
	roots    map[string]bool
}

// NewAggregator creates an aggregator that writes <name>.html through fs
func NewAggregator(fs storage.FileSystem, name string, logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	a := &Aggregator{fs: fs, name: name, logger: logger}
	a.Reset()
	return a
}

// Reset forgets every recorded failure and starts a new run
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runID = uuid.NewString()
	a.failures = make(map[string]FailureInfo)
	a.roots = make(map[string]bool)
}

// RunID identifies the current run
func (a *Aggregator) RunID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runID
}

// Observe notes a snapshot root touched during the run, so stale reports
// there can be removed when the run passes.
func (a *Aggregator) Observe(root string) {
	if root == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roots[root] = true
}

// RecordFailure adds a failing group. Failures in record mode are expected
// and ignored; each group is kept once however many of its tests fail.
func (a *Aggregator) RecordFailure(info FailureInfo, mode models.Mode) {
	if mode == models.ModeRecord || info.Root == "" || info.Group == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roots[info.Root] = true
	if _, ok := a.failures[info.key()]; !ok {
		a.failures[info.key()] = info
	}
}

// Failures returns the recorded failures ordered by root and group
func (a *Aggregator) Failures() []FailureInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedFailures()
}

func (a *Aggregator) sortedFailures() []FailureInfo {
	out := make([]FailureInfo, 0, len(a.failures))
	for _, f := range a.failures {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

// Flush writes the report for the recorded failures and clears them.
// It returns the report path, or "" when nothing failed; in that case stale
// reports are removed from every observed root and from their common path.
func (a *Aggregator) Flush(ctx context.Context) (string, error) {
	a.mu.Lock()
	failures := a.sortedFailures()
	roots := make([]string, 0, len(a.roots))
	for r := range a.roots {
		roots = append(roots, r)
	}
	runID := a.runID
	a.failures = make(map[string]FailureInfo)
	a.mu.Unlock()

	sort.Strings(roots)
	log := a.logger.WithFields(logging.Fields{"run": runID})

	if len(failures) == 0 {
		if len(roots) == 0 {
			return "", nil
		}
		dirs := append(roots, paths.CommonPath(roots))
		if err := RemoveReports(ctx, a.fs, dirs, a.name); err != nil {
			log.Warn(ctx, "failed to remove stale failure report", logging.Fields{"error": err.Error()})
			return "", err
		}
		return "", nil
	}

	failedRoots := make([]string, 0, len(failures))
	var artifacts []paths.Artifact
	var result *multierror.Error
	for _, f := range failures {
		failedRoots = append(failedRoots, f.Root)
		found, err := paths.ListDiffs(ctx, a.fs, f.Root, f.Group)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("listing diffs for %s: %w", f.Group, err))
			continue
		}
		artifacts = append(artifacts, found...)
	}

	dir := paths.CommonPath(failedRoots)
	path, err := WriteReport(ctx, a.fs, dir, a.name, runID, artifacts)
	if err != nil {
		result = multierror.Append(result, err)
		log.Error(ctx, "failed to write failure report", err, nil)
		return "", result.ErrorOrNil()
	}

	log.Info(ctx, "failure report written", logging.Fields{
		"path":      path,
		"groups":    len(failures),
		"snapshots": len(artifacts),
	})
	return path, result.ErrorOrNil()
}
