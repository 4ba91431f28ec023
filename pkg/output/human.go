package output

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer  io.Writer
	command string
	total   int
	quiet   bool

	red    *color.Color
	green  *color.Color
	yellow *color.Color
	bold   *color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(colored bool) *HumanFormatter {
	f := &HumanFormatter{
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{f.red, f.green, f.yellow, f.bold} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, command string, total int) error {
	f.writer = writer
	f.command = command
	f.total = total
	return nil
}

// Progress prints one line per processed artifact
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil || f.quiet {
		return nil
	}

	name := filepath.Join(update.Artifact.Group, update.Artifact.Name)
	switch update.Type {
	case "artifact_complete":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s\n", update.Current, update.Total, f.green.Sprint("✓"), name)
	case "artifact_error":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s: %v\n", update.Current, update.Total, f.red.Sprint("✗"), name, update.Error)
	}
	return nil
}

// Complete prints the entries grouped by snapshot root and a summary line
func (f *HumanFormatter) Complete(report *Report) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	root := ""
	for _, e := range report.Entries {
		if f.quiet && e.Status != StatusError {
			continue
		}
		if e.Artifact.Root != root {
			root = e.Artifact.Root
			fmt.Fprintf(f.writer, "%s\n", f.bold.Sprint(root))
		}
		fmt.Fprintf(f.writer, "  %s %s/%s (%s)", f.statusMark(e.Status), e.Artifact.Group, e.Artifact.Name,
			humanize.Bytes(uint64(e.Artifact.DiffSize)))
		if e.Error != "" {
			fmt.Fprintf(f.writer, ": %s", e.Error)
		}
		fmt.Fprintln(f.writer)
	}

	if report.ReportPath != "" {
		fmt.Fprintf(f.writer, "Report: %s\n", report.ReportPath)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, msg := range report.Errors {
			fmt.Fprintf(f.writer, "  %s\n", msg)
		}
	}

	if f.quiet {
		return nil
	}
	fmt.Fprintln(f.writer, f.summary(report))
	return nil
}

func (f *HumanFormatter) summary(report *Report) string {
	elapsed := report.Duration.Round(time.Millisecond)
	switch report.Command {
	case "approve":
		return fmt.Sprintf("%d approved, %d errors in %s", report.Count(StatusApproved), report.Count(StatusError), elapsed)
	case "clean":
		return fmt.Sprintf("%d cleaned, %d errors in %s", report.Count(StatusRemoved), report.Count(StatusError), elapsed)
	default:
		failing := report.Count(StatusFailing)
		if failing == 0 {
			return f.green.Sprint("No failing snapshots")
		}
		return f.red.Sprintf("%s failing", humanize.Comma(int64(failing))) +
			fmt.Sprintf(" snapshot%s under %s", plural(failing), report.Base)
	}
}

func (f *HumanFormatter) statusMark(status string) string {
	switch status {
	case StatusApproved, StatusRemoved:
		return f.green.Sprint("✓")
	case StatusError:
		return f.red.Sprint("✗")
	default:
		return f.yellow.Sprint("•")
	}
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", f.red.Sprint("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
