package results

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

const widgetsRoot = "/snapshots/widgetsSnapshots"

func writeArtifacts(t *testing.T, fs *storage.Memory, root, group, name string) {
	t.Helper()
	ctx := context.Background()
	for _, imageType := range models.ImageTypes {
		path := filepath.Join(root, imageType.DirectoryName(), group, name)
		require.NoError(t, fs.WriteFile(ctx, path, []byte(imageType)))
	}
}

func TestRecordFailure(t *testing.T) {
	a := NewAggregator(storage.NewMemory(), "pixeltest_failures", nil)

	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "button", Function: "TestA"}, models.ModeTest)
	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "button", Function: "TestB"}, models.ModeTest)
	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "label", Function: "TestC"}, models.ModeRecord)
	a.RecordFailure(FailureInfo{Root: "", Group: "label"}, models.ModeTest)

	want := []FailureInfo{{Root: widgetsRoot, Group: "button", Function: "TestA"}}
	if diff := cmp.Diff(want, a.Failures()); diff != "" {
		t.Errorf("Failures() mismatch (-want +got):\n%s", diff)
	}

	runID := a.RunID()
	a.Reset()
	assert.Empty(t, a.Failures())
	assert.NotEqual(t, runID, a.RunID())
}

func TestRecordFailureConcurrent(t *testing.T) {
	a := NewAggregator(storage.NewMemory(), "pixeltest_failures", nil)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			a.RecordFailure(FailureInfo{
				Root:     widgetsRoot,
				Group:    fmt.Sprintf("group%d", i%5),
				Function: fmt.Sprintf("Test%d", i),
			}, models.ModeTest)
			a.Observe(widgetsRoot)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, a.Failures(), 5)
}

func TestFlush_WritesReport(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemory()
	writeArtifacts(t, fs, widgetsRoot, "button", "Primary_dw_dh@2.0x.png")
	writeArtifacts(t, fs, widgetsRoot, "button", "Secondary_dw_dh@2.0x.png")
	writeArtifacts(t, fs, widgetsRoot, "label", "Title_320.0_dh@2.0x.png")

	a := NewAggregator(fs, "pixeltest_failures", nil)
	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "button"}, models.ModeTest)

	path, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(widgetsRoot, "pixeltest_failures.html"), path)

	data, err := fs.ReadFile(ctx, path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "2 failing snapshots")
	assert.Contains(t, html, "widgetsSnapshots/button/Primary_dw_dh@2.0x")
	assert.Contains(t, html, `src="Failure/button/Primary_dw_dh@2.0x.png"`)
	assert.Contains(t, html, `src="Reference/button/Secondary_dw_dh@2.0x.png"`)
	assert.Contains(t, html, "mouseMoved(event, this)")
	assert.NotContains(t, html, "label", "groups without failures are not reported")
	assert.Empty(t, a.Failures(), "flush clears failures")
}

func TestFlush_CommonPathAcrossModules(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemory()
	formsRoot := "/snapshots/formsSnapshots"
	writeArtifacts(t, fs, widgetsRoot, "button", "Primary_dw_dh@1.0x.png")
	writeArtifacts(t, fs, formsRoot, "login", "Empty_dw_dh@1.0x.png")

	a := NewAggregator(fs, "visual", nil)
	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "button"}, models.ModeTest)
	a.RecordFailure(FailureInfo{Root: formsRoot, Group: "login"}, models.ModeTest)

	path, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/snapshots/visual.html", path)

	data, err := fs.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `src="formsSnapshots/Failure/login/Empty_dw_dh@1.0x.png"`)
	assert.Contains(t, string(data), `src="widgetsSnapshots/Reference/button/Primary_dw_dh@1.0x.png"`)
}

func TestFlush_RemovesStaleReports(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemory()
	stale := filepath.Join(widgetsRoot, "pixeltest_failures.html")
	require.NoError(t, fs.WriteFile(ctx, stale, []byte("old")))
	require.NoError(t, fs.WriteFile(ctx, filepath.Join(widgetsRoot, "keep.html"), []byte("x")))

	a := NewAggregator(fs, "pixeltest_failures", nil)
	a.Observe(widgetsRoot)

	path, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	exists, err := fs.Exists(ctx, stale)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, []string{filepath.Join(widgetsRoot, "keep.html")}, fs.Files())
}

func TestFlush_NothingObserved(t *testing.T) {
	a := NewAggregator(storage.NewMemory(), "pixeltest_failures", nil)
	path, err := a.Flush(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, path)
}

func TestFlush_WriteError(t *testing.T) {
	fs := storage.NewMemory()
	writeArtifacts(t, fs, widgetsRoot, "button", "Primary_dw_dh@1.0x.png")
	fs.FailWrites = errors.New("read-only")

	a := NewAggregator(fs, "pixeltest_failures", nil)
	a.RecordFailure(FailureInfo{Root: widgetsRoot, Group: "button"}, models.ModeTest)

	path, err := a.Flush(context.Background())
	assert.Empty(t, path)
	assert.ErrorContains(t, err, "failed to write report")
}

func TestBuildReport(t *testing.T) {
	artifacts := []paths.Artifact{{
		Root:      widgetsRoot,
		Group:     "button",
		Name:      "Primary_dw_dh@1.0x.png",
		Diff:      widgetsRoot + "/Diff/button/Primary_dw_dh@1.0x.png",
		Failure:   widgetsRoot + "/Failure/button/Primary_dw_dh@1.0x.png",
		Reference: widgetsRoot + "/Reference/button/Primary_dw_dh@1.0x.png",
	}}

	report, err := BuildReport("run-1", "/snapshots", artifacts)
	require.NoError(t, err)

	want := []Section{{
		Heading:   "widgetsSnapshots/button/Primary_dw_dh@1.0x",
		Group:     "button",
		Failure:   "widgetsSnapshots/Failure/button/Primary_dw_dh@1.0x.png",
		Reference: "widgetsSnapshots/Reference/button/Primary_dw_dh@1.0x.png",
		Diff:      "widgetsSnapshots/Diff/button/Primary_dw_dh@1.0x.png",
	}}
	if diff := cmp.Diff(want, report.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	html, err := report.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), "1 failing snapshot<")
	assert.Contains(t, string(html), "run-1")
	assert.Equal(t, 2, strings.Count(string(html), "Failure/button/Primary_dw_dh@1.0x.png"), "failed image and split overlay")
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "/a/report.html", ReportPath("/a", "report"))
	assert.Equal(t, "/a/report.html", ReportPath("/a", "report.html"))
}

func TestRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesAtCommonPath", func(t *testing.T) {
		fs := storage.NewMemory()
		writeArtifacts(t, fs, widgetsRoot, "button", "Primary_dw_dh@2.0x.png")
		writeArtifacts(t, fs, "/snapshots/formsSnapshots", "input", "Empty_dw_dh@2.0x.png")

		path, err := Regenerate(ctx, fs, "/snapshots", "pixeltest_failures", "run-1")
		require.NoError(t, err)
		assert.Equal(t, "/snapshots/pixeltest_failures.html", path)

		data, err := fs.ReadFile(ctx, path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "widgetsSnapshots/Failure/button/Primary_dw_dh@2.0x.png")
		assert.Contains(t, string(data), "formsSnapshots/Failure/input/Empty_dw_dh@2.0x.png")
	})

	t.Run("RemovesStaleReports", func(t *testing.T) {
		fs := storage.NewMemory()
		ref := filepath.Join(widgetsRoot, "Reference", "button", "Primary_dw_dh@2.0x.png")
		require.NoError(t, fs.WriteFile(ctx, ref, []byte("png")))
		stale := ReportPath(widgetsRoot, "pixeltest_failures")
		require.NoError(t, fs.WriteFile(ctx, stale, []byte("<html>")))

		path, err := Regenerate(ctx, fs, "/snapshots", "pixeltest_failures", "run-2")
		require.NoError(t, err)
		assert.Empty(t, path)

		exists, err := fs.Exists(ctx, stale)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("EmptyBase", func(t *testing.T) {
		path, err := Regenerate(ctx, storage.NewMemory(), "/nothing", "pixeltest_failures", "run-3")
		require.NoError(t, err)
		assert.Empty(t, path)
	})
}
