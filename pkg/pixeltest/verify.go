package pixeltest

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/render"
	"github.com/sdejongh/pixeltest/pkg/results"
	"github.com/sdejongh/pixeltest/pkg/snapshot"
	"github.com/sdejongh/pixeltest/pkg/view"
)

// TestingT is the part of testing.TB that Verify uses
type TestingT interface {
	Helper()
	Name() string
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
	Failed() bool
}

type options struct {
	mode   models.Mode
	scale  models.Scale
	suffix string
}

// Option customises a single assertion
type Option func(*options)

// WithMode records instead of testing, or the reverse. A suite configured
// with record enabled always records.
func WithMode(mode models.Mode) Option {
	return func(o *options) { o.mode = mode }
}

// WithScale renders at an explicit density instead of the screen's native one
func WithScale(scale models.Scale) Option {
	return func(o *options) { o.scale = scale }
}

// WithSuffix appends _suffix to the snapshot filename, for several
// assertions in one test
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = suffix }
}

// callerDepth is the runtime.Caller depth of the test function, counted from identify
const callerDepth = 3

// Verify lays out and renders unit, then records or compares it. Failures are
// reported on t; a misconfigured suite stops the test with Fatalf.
func (s *Suite) Verify(t TestingT, unit render.Imageable, style models.LayoutStyle, opts ...Option) *snapshot.Result {
	t.Helper()
	return s.verify(t, unit, style, opts)
}

// VerifyView verifies v rendered on the suite's screen
func (s *Suite) VerifyView(t TestingT, v *view.View, style models.LayoutStyle, opts ...Option) *snapshot.Result {
	t.Helper()
	return s.verify(t, s.screen.Unit(v), style, opts)
}

// VerifyScreenshot verifies an already rendered image at the screen's native
// scale after removing clipFromTop points from its top edge.
func (s *Suite) VerifyScreenshot(t TestingT, img image.Image, clipFromTop float64, opts ...Option) *snapshot.Result {
	t.Helper()
	clipped, err := render.Clip(&render.Bitmap{Image: img, Scale: s.screen.NativeScale}, clipFromTop)
	if err != nil {
		t.Errorf("pixeltest: unable to clip screenshot: %v", err)
		return nil
	}
	return s.verify(t, clipped, models.DynamicWidthAndHeight(), opts)
}

func (s *Suite) verify(t TestingT, unit render.Imageable, style models.LayoutStyle, opts []Option) *snapshot.Result {
	t.Helper()
	ctx := context.Background()

	o := options{mode: models.ModeTest, scale: models.Native()}
	for _, opt := range opts {
		opt(&o)
	}
	if s.cfg.Snapshots.Record {
		o.mode = models.ModeRecord
	}

	id := identify(t.Name())
	cfg := models.SnapshotConfig{Identity: id, Scale: o.scale, Layout: style, Suffix: o.suffix}

	root, err := s.resolver.SnapshotRoot(ctx, id)
	if err != nil {
		t.Fatalf("%v", err)
		return nil
	}
	s.aggregator.Observe(root)
	mode := o.mode
	t.Cleanup(func() {
		if t.Failed() {
			s.aggregator.RecordFailure(results.FailureInfo{
				Root:     root,
				Group:    id.Group,
				Function: id.Function,
			}, mode)
		}
	})

	result, err := s.coordinator.Verify(ctx, unit, cfg, mode)
	for _, path := range result.Attachments() {
		t.Logf("pixeltest: %s", path)
	}
	if err != nil {
		var setupErr *paths.SetupError
		if errors.As(err, &setupErr) {
			t.Fatalf("%v", err)
			return result
		}
		t.Errorf("%v", err)
	}
	return result
}

// identify derives the snapshot identity of the test that called Verify
func identify(testName string) models.Identity {
	id := models.Identity{Function: testName}

	pc, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return id
	}
	id.File = file
	id.Line = line
	id.Group = groupName(file)

	if fn := runtime.FuncForPC(pc); fn != nil {
		id.Package = packagePath(fn.Name())
		id.Module = id.Package[strings.LastIndex(id.Package, "/")+1:]
	}
	return id
}

// groupName is the source file name without its _test.go or .go suffix
func groupName(file string) string {
	name := filepath.Base(file)
	if trimmed := strings.TrimSuffix(name, "_test.go"); trimmed != name {
		return trimmed
	}
	return strings.TrimSuffix(name, ".go")
}

// packagePath extracts the import path from a qualified function name such as
// example.com/app/widgets_test.TestButton.func1
func packagePath(funcName string) string {
	slash := strings.LastIndex(funcName, "/")
	dot := strings.Index(funcName[slash+1:], ".")
	pkg := funcName
	if dot >= 0 {
		pkg = funcName[:slash+1+dot]
	}
	return strings.TrimSuffix(pkg, "_test")
}
