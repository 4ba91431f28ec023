package results

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/hashicorp/go-multierror"

	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(reportTemplate))

// Section is one failing snapshot in the report. Image paths are relative to the report file.
type Section struct {
	Heading   string
	Group     string
	Failure   string
	Reference string
	Diff      string
}

// Report is the data rendered into the HTML page
type Report struct {
	RunID     string
	Generated time.Time
	Sections  []Section
}

// ReportPath returns <dir>/<name>.html
func ReportPath(dir, name string) string {
	return filepath.Join(dir, strings.TrimSuffix(name, ".html")+".html")
}

// BuildReport turns artifacts into report sections with paths relative to dir
func BuildReport(runID, dir string, artifacts []paths.Artifact) (*Report, error) {
	report := &Report{RunID: runID, Generated: time.Now()}
	for _, a := range artifacts {
		failure, err := relative(dir, a.Failure)
		if err != nil {
			return nil, err
		}
		reference, err := relative(dir, a.Reference)
		if err != nil {
			return nil, err
		}
		diff, err := relative(dir, a.Diff)
		if err != nil {
			return nil, err
		}
		report.Sections = append(report.Sections, Section{
			Heading:   filepath.ToSlash(filepath.Join(filepath.Base(a.Root), a.Group, strings.TrimSuffix(a.Name, filepath.Ext(a.Name)))),
			Group:     a.Group,
			Failure:   failure,
			Reference: reference,
			Diff:      diff,
		})
	}
	return report, nil
}

// Render writes the report as a self-contained HTML page
func (r *Report) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport renders artifacts into <dir>/<name>.html and returns the path written
func WriteReport(ctx context.Context, fs storage.FileSystem, dir, name, runID string, artifacts []paths.Artifact) (string, error) {
	report, err := BuildReport(runID, dir, artifacts)
	if err != nil {
		return "", err
	}
	data, err := report.Render()
	if err != nil {
		return "", err
	}

	path := ReportPath(dir, name)
	if err := fs.MkdirAll(ctx, dir); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := fs.WriteFile(ctx, path, data); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// RemoveReports deletes <dir>/<name>.html from every directory
func RemoveReports(ctx context.Context, fs storage.FileSystem, dirs []string, name string) error {
	var result *multierror.Error
	seen := make(map[string]bool)
	for _, dir := range dirs {
		path := ReportPath(dir, name)
		if seen[path] {
			continue
		}
		seen[path] = true
		if err := fs.Remove(ctx, path); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	return result.ErrorOrNil()
}

// relative returns target relative to dir with forward slashes, for use in src attributes
func relative(dir, target string) (string, error) {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", target, err)
	}
	return filepath.ToSlash(rel), nil
}
