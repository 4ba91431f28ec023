package output

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/sdejongh/pixeltest/pkg/paths"
)

// Entry statuses
const (
	StatusFailing  = "failing"
	StatusApproved = "approved"
	StatusRemoved  = "removed"
	StatusError    = "error"
)

// ProgressUpdate represents a progress notification while artifacts are processed
type ProgressUpdate struct {
	Type     string // "artifact_start", "artifact_complete", "artifact_error"
	Artifact paths.Artifact
	Current  int
	Total    int
	Error    error
}

// Entry is the outcome for one failing snapshot
type Entry struct {
	Artifact paths.Artifact
	Status   string
	Error    string
}

// Report summarises one CLI command over the snapshot tree
type Report struct {
	Command    string
	Base       string
	Entries    []Entry
	ReportPath string
	Duration   time.Duration
	Errors     []string
}

// Count returns how many entries have the given status
func (r *Report) Count(status string) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, progress bar and JSON formatters
type Formatter interface {
	// Start initializes the formatter for a command touching total artifacts
	Start(writer io.Writer, command string, total int) error

	// Progress reports progress while artifacts are processed
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the summary
	Complete(report *Report) error

	// Error reports an error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// Options selects a formatter
type Options struct {
	Format   string // "human" or "json"
	Progress bool
	Color    bool
	Quiet    bool
}

// New returns the formatter for opts. Progress bars are only used when w is a terminal.
func New(opts Options, w io.Writer) Formatter {
	if opts.Format == "json" {
		return NewJSONFormatter()
	}
	human := NewHumanFormatter(opts.Color && IsTerminal(w))
	human.quiet = opts.Quiet
	if opts.Progress && !opts.Quiet && IsTerminal(w) {
		return NewProgressFormatter(human)
	}
	return human
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
