package output

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	command string
	errors  []string
}

// JSONReportData is the document written on Complete
type JSONReportData struct {
	Command    string          `json:"command"`
	Base       string          `json:"base,omitempty"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Counts     map[string]int  `json:"counts"`
	Snapshots  []JSONEntryData `json:"snapshots"`
	Report     string          `json:"report,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// JSONEntryData represents one failing snapshot
type JSONEntryData struct {
	Root      string `json:"root"`
	Group     string `json:"group"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Diff      string `json:"diff"`
	Failure   string `json:"failure"`
	Reference string `json:"reference"`
	DiffSize  int64  `json:"diff_size"`
	Error     string `json:"error,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, command string, total int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.command = command
	return nil
}

// Progress is not streamed, to keep the output a single parseable document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as one indented JSON document
func (f *JSONFormatter) Complete(report *Report) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	data := JSONReportData{
		Command:    report.Command,
		Base:       report.Base,
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Counts:     make(map[string]int),
		Snapshots:  make([]JSONEntryData, 0, len(report.Entries)),
		Report:     report.ReportPath,
		Errors:     append(append([]string(nil), f.errors...), report.Errors...),
	}
	for _, e := range report.Entries {
		data.Counts[e.Status]++
		data.Snapshots = append(data.Snapshots, JSONEntryData{
			Root:      e.Artifact.Root,
			Group:     e.Artifact.Group,
			Name:      e.Artifact.Name,
			Status:    e.Status,
			Diff:      e.Artifact.Diff,
			Failure:   e.Artifact.Failure,
			Reference: e.Artifact.Reference,
			DiffSize:  e.Artifact.DiffSize,
			Error:     e.Error,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records an error for the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
