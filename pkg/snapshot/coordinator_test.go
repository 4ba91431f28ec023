package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/pixeltest/pkg/compare"
	"github.com/sdejongh/pixeltest/pkg/layout"
	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/render"
	"github.com/sdejongh/pixeltest/pkg/storage"
	"github.com/sdejongh/pixeltest/pkg/view"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type fixture struct {
	coord    *Coordinator
	fs       *storage.Memory
	resolver *paths.Resolver
	screen   render.Screen
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, policy models.MissingReferencePolicy) *fixture {
	t.Helper()
	base, err := paths.NewEnvBase("/snapshots")
	require.NoError(t, err)

	fs := storage.NewMemory()
	resolver := paths.NewResolver(fs, base, 2)
	screen := render.NewScreen(2)
	logs := &bytes.Buffer{}
	logger := logging.NewStreamLogger(logs, logging.FormatText, logging.DebugLevel)

	return &fixture{
		coord:    NewCoordinator(layout.NewEngine(), resolver, compare.NewExact(), logger, policy),
		fs:       fs,
		resolver: resolver,
		screen:   screen,
		logs:     logs,
	}
}

func (f *fixture) unit(c color.Color) *render.Unit {
	return f.screen.Unit(view.New(view.Fill{Color: c}))
}

func snapshotConfig(function string) models.SnapshotConfig {
	return models.SnapshotConfig{
		Identity: models.Identity{
			Module:   "widgets",
			Package:  "example.com/app/widgets",
			Group:    "button",
			Function: function,
		},
		Scale:  models.Native(),
		Layout: models.Fixed(10, 5),
	}
}

func (f *fixture) path(t *testing.T, cfg models.SnapshotConfig, imageType models.ImageType) string {
	t.Helper()
	p, err := f.resolver.Path(context.Background(), cfg, imageType)
	require.NoError(t, err)
	return p
}

func TestVerify_RecordMode(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	cfg := snapshotConfig("TestRecord")

	result, err := f.coord.Verify(context.Background(), f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)
	assert.Contains(t, err.Error(), "disable record mode")

	require.NotNil(t, result)
	assert.Equal(t, OutcomeRecorded, result.Outcome)
	assert.Equal(t, 20, result.Reference.Bounds().Dx())
	assert.Equal(t, 10, result.Reference.Bounds().Dy())

	want := "/snapshots/widgetsSnapshots/Reference/button/Record_10.0_5.0@2.0x.png"
	assert.Equal(t, []string{want}, f.fs.Files())
	assert.Equal(t, []string{want}, result.Attachments())
}

func TestVerify_RecordOverwrites(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestOverwrite")

	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)
	_, err = f.coord.Verify(ctx, f.unit(blue), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	result, err := f.coord.Verify(ctx, f.unit(blue), cfg, models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)
}

func TestVerify_TestPasses(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestMatch")

	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	result, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)
	assert.NotNil(t, result.Reference)
	assert.NotNil(t, result.Current)
	assert.Nil(t, result.Diff)
	assert.Len(t, f.fs.Files(), 1)
}

func TestVerify_TestMismatch(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestMismatch")

	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	result, err := f.coord.Verify(ctx, f.unit(blue), cfg, models.ModeTest)
	require.ErrorIs(t, err, ErrImagesAreDifferent)
	assert.Contains(t, err.Error(), "Snapshot test failed, images are different")

	var testErr *TestError
	require.True(t, errors.As(err, &testErr))
	assert.NotNil(t, testErr.Reference)
	assert.NotNil(t, testErr.Failed)
	require.NotNil(t, testErr.Comparison)
	assert.False(t, testErr.Comparison.Equal())

	require.NotNil(t, result)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.NotNil(t, result.Diff)
	assert.Equal(t, result.Current.Bounds().Size(), result.Diff.Bounds().Size())

	diffPath := f.path(t, cfg, models.ImageDiff)
	failurePath := f.path(t, cfg, models.ImageFailure)
	assert.Equal(t, []string{f.path(t, cfg, models.ImageReference), diffPath, failurePath}, result.Attachments())

	failure, err := f.fs.ReadFile(ctx, failurePath)
	require.NoError(t, err)
	decoded, err := render.Decode(failure, 2)
	require.NoError(t, err)
	assert.True(t, compare.Equal(decoded, result.Current), "failure image holds the current render")
}

func TestVerify_PassRemovesStaleArtifacts(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestRecovers")

	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)
	_, err = f.coord.Verify(ctx, f.unit(blue), cfg, models.ModeTest)
	require.ErrorIs(t, err, ErrImagesAreDifferent)
	require.Len(t, f.fs.Files(), 3)

	_, err = f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, []string{f.path(t, cfg, models.ImageReference)}, f.fs.Files())
}

func TestVerify_MissingReference(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordAndFail", func(t *testing.T) {
		f := newFixture(t, models.RecordAndFail)
		cfg := snapshotConfig("TestFirst")

		result, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
		require.ErrorIs(t, err, ErrRecordedFirstTime)
		assert.Equal(t, OutcomeRecorded, result.Outcome)
		assert.Equal(t, []string{f.path(t, cfg, models.ImageReference)}, f.fs.Files())

		// The next run compares against what was recorded
		_, err = f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
		assert.NoError(t, err)
	})

	t.Run("RecordAndPass", func(t *testing.T) {
		f := newFixture(t, models.RecordAndPass)
		cfg := snapshotConfig("TestFirst")

		result, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRecorded, result.Outcome)
		assert.Len(t, f.fs.Files(), 1)
	})

	t.Run("Fail", func(t *testing.T) {
		f := newFixture(t, models.FailMissing)
		cfg := snapshotConfig("TestFirst")

		result, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
		require.ErrorIs(t, err, ErrReferenceMissing)
		assert.Contains(t, err.Error(), "Unable to get recorded image data")
		assert.Equal(t, OutcomeFailed, result.Outcome)
		assert.Empty(t, f.fs.Files())
	})

	t.Run("InvalidPolicyDefaultsToRecordAndFail", func(t *testing.T) {
		f := newFixture(t, "sometimes")
		_, err := f.coord.Verify(ctx, f.unit(red), snapshotConfig("TestFirst"), models.ModeTest)
		assert.ErrorIs(t, err, ErrRecordedFirstTime)
	})
}

func TestVerify_EmptyLayout(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()

	cfg := snapshotConfig("TestNoWidth")
	cfg.Layout = models.DynamicWidth(10)
	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	assert.ErrorIs(t, err, ErrNoWidth)

	cfg = snapshotConfig("TestNoHeight")
	cfg.Layout = models.DynamicHeight(10)
	_, err = f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	assert.ErrorIs(t, err, ErrNoHeight)

	assert.Empty(t, f.fs.Files())
}

func TestVerify_IntrinsicSize(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	cfg := snapshotConfig("TestIntrinsic")
	cfg.Layout = models.DynamicWidthAndHeight()
	cfg.Scale = models.Explicit(1)

	unit := f.screen.Unit(view.New(view.Box{Size: view.Size{Width: 7, Height: 3}, Color: red}))
	result, err := f.coord.Verify(context.Background(), unit, cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)
	assert.Equal(t, image.Rect(0, 0, 7, 3), result.Reference.Bounds())
	assert.Equal(t,
		[]string{"/snapshots/widgetsSnapshots/Reference/button/Intrinsic_dw_dh@1.0x.png"},
		f.fs.Files())
}

func TestVerify_Bitmap(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestScreenshot")

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(img, img.Bounds(), image.NewUniform(blue), image.Point{}, draw.Src)
	bitmap := &render.Bitmap{Image: img, Scale: 2}

	_, err := f.coord.Verify(ctx, bitmap, cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	result, err := f.coord.Verify(ctx, bitmap, cfg, models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, view.Size{Width: 4, Height: 4}, result.Reference.Size())
}

func TestVerify_NativeScaleFollowsResolver(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestDensity")

	// The unit's own screen is 1x; the resolver names files at 2x
	unit := render.NewScreen(1).Unit(view.New(view.Fill{Color: red}))

	result, err := f.coord.Verify(ctx, unit, cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)
	assert.Equal(t, image.Rect(0, 0, 20, 10), result.Reference.Bounds())
	assert.Equal(t,
		[]string{"/snapshots/widgetsSnapshots/Reference/button/Density_10.0_5.0@2.0x.png"},
		f.fs.Files())

	unit = render.NewScreen(1).Unit(view.New(view.Fill{Color: red}))
	result, err = f.coord.Verify(ctx, unit, cfg, models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)
	assert.Equal(t, 2.0, result.Reference.Scale)
	assert.Equal(t, 2.0, result.Current.Scale)
	assert.Equal(t, view.Size{Width: 10, Height: 5}, result.Reference.Size())
}

func TestVerify_TranslucentRoundTrip(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestTranslucent")
	translucent := color.NRGBA{R: 40, G: 90, B: 200, A: 120}

	_, err := f.coord.Verify(ctx, f.unit(translucent), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	reused := f.unit(translucent)
	for _, unit := range []*render.Unit{f.unit(translucent), f.unit(translucent), reused, reused} {
		result, err := f.coord.Verify(ctx, unit, cfg, models.ModeTest)
		require.NoError(t, err)
		assert.Equal(t, OutcomePassed, result.Outcome)
	}
	assert.Len(t, f.fs.Files(), 1)
}

func TestVerify_WriteFailure(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	f.fs.FailWrites = errors.New("disk full")

	result, err := f.coord.Verify(context.Background(), f.unit(red), snapshotConfig("TestWrite"), models.ModeRecord)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrUnableToWriteImage)
	assert.Contains(t, err.Error(), "Unable to write image data to disk")
	assert.Contains(t, err.Error(), "disk full")
}

func TestVerify_ArtifactWriteFailureIsLogged(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestReadOnly")

	_, err := f.coord.Verify(ctx, f.unit(red), cfg, models.ModeRecord)
	require.ErrorIs(t, err, ErrSnapshotRecorded)

	f.fs.FailWrites = errors.New("read-only")
	result, err := f.coord.Verify(ctx, f.unit(blue), cfg, models.ModeTest)
	require.ErrorIs(t, err, ErrImagesAreDifferent)
	assert.NotContains(t, result.Paths, models.ImageDiff)
	assert.NotContains(t, result.Paths, models.ImageFailure)
	assert.Contains(t, f.logs.String(), "failed to store diff and failure images")
}

func TestVerify_CorruptReference(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()
	cfg := snapshotConfig("TestCorrupt")

	_, err := f.resolver.Write(ctx, []byte("not a png"), cfg, models.ImageReference)
	require.NoError(t, err)

	_, err = f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
	require.ErrorIs(t, err, ErrRecordedImageUnreadable)
	assert.ErrorIs(t, err, render.ErrNotPNG)
}

func TestVerify_InvalidInput(t *testing.T) {
	f := newFixture(t, models.RecordAndFail)
	ctx := context.Background()

	_, err := f.coord.Verify(ctx, nil, snapshotConfig("TestNil"), models.ModeTest)
	assert.ErrorIs(t, err, &RecordError{Kind: UnableToCreateSnapshot})

	cfg := snapshotConfig("")
	_, err = f.coord.Verify(ctx, f.unit(red), cfg, models.ModeTest)
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.coord.Verify(ctx, f.unit(red), snapshotConfig("TestMode"), models.Mode("replay"))
	assert.ErrorContains(t, err, "unknown mode")
}

func TestVerify_SetupErrorPropagates(t *testing.T) {
	resolver := paths.NewResolver(storage.NewMemory(), &paths.SourceBase{}, 1)
	coord := NewCoordinator(layout.NewEngine(), resolver, compare.NewExact(), nil, models.RecordAndFail)

	_, err := coord.Verify(context.Background(), render.NewScreen(1).Unit(view.New(view.Fill{Color: red})), snapshotConfig("TestSetup"), models.ModeTest)
	var setupErr *paths.SetupError
	assert.True(t, errors.As(err, &setupErr))
}

func TestKindMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{UnableToCreateSnapshot, "Unable to create snapshot"},
		{UnableToCreateImageData, "Unable to create image data"},
		{UnableToWriteImageToDisk, "Unable to write image data to disk"},
		{UnableToGetRecordedImageData, "Unable to get recorded image data"},
		{UnableToGetRecordedImage, "Unable to get recorded image"},
		{ImagesAreDifferent, "Snapshot test failed, images are different"},
		{Kind(0), "unknown snapshot failure"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}

	assert.False(t, errors.Is(&RecordError{Kind: UnableToCreateSnapshot}, &TestError{Kind: UnableToCreateSnapshot}))
}
