package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdejongh/pixeltest/pkg/compare"
	"github.com/sdejongh/pixeltest/pkg/layout"
	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/render"
)

// FileCoordinator stores and retrieves snapshot artifacts.
// *paths.Resolver is the production implementation.
type FileCoordinator interface {
	// NativeScale is the density native-scale snapshots are named, rendered and decoded at
	NativeScale() float64
	Path(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) (string, error)
	Exists(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) (bool, error)
	Read(ctx context.Context, cfg models.SnapshotConfig, imageType models.ImageType) ([]byte, error)
	Write(ctx context.Context, data []byte, cfg models.SnapshotConfig, imageType models.ImageType) (string, error)
	StoreDiffAndFailure(ctx context.Context, diff, failure []byte, cfg models.SnapshotConfig) (string, string, error)
	RemoveDiffAndFailure(ctx context.Context, cfg models.SnapshotConfig) error
}

// Outcome is how a verification ended
type Outcome string

const (
	// OutcomeRecorded means a reference image was written
	OutcomeRecorded Outcome = "recorded"
	// OutcomePassed means the render matched its reference
	OutcomePassed Outcome = "passed"
	// OutcomeFailed means the render did not match, or could not be checked
	OutcomeFailed Outcome = "failed"
)

// Result carries the images involved in one verification.
// Paths holds every artifact written or compared against, keyed by image type.
type Result struct {
	Outcome   Outcome
	Reference *render.Bitmap
	Current   *render.Bitmap
	Diff      *render.Bitmap
	Paths     map[models.ImageType]string
}

// Attachments returns the artifact paths in image type order
func (r *Result) Attachments() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, t := range models.ImageTypes {
		if p, ok := r.Paths[t]; ok && p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Coordinator runs the record and test state machine for snapshot assertions
type Coordinator struct {
	layout     layout.Coordinator
	files      FileCoordinator
	comparator compare.ImageComparator
	logger     logging.Logger
	policy     models.MissingReferencePolicy
}

// NewCoordinator creates a coordinator. A nil logger discards output and an
// invalid policy falls back to record-and-fail.
func NewCoordinator(
	layoutCoordinator layout.Coordinator,
	files FileCoordinator,
	comparator compare.ImageComparator,
	logger logging.Logger,
	policy models.MissingReferencePolicy,
) *Coordinator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if !policy.Valid() {
		policy = models.RecordAndFail
	}
	return &Coordinator{
		layout:     layoutCoordinator,
		files:      files,
		comparator: comparator,
		logger:     logger,
		policy:     policy,
	}
}

// scaleFor is the render and decode density of cfg. Native scale comes from
// the file coordinator so that filenames and pixels always agree.
func (c *Coordinator) scaleFor(cfg models.SnapshotConfig) float64 {
	return cfg.Scale.ExplicitOrScreenNativeValue(c.files.NativeScale())
}

// Verify lays out unit when it is backed by a view, then records or tests it.
// Recording always returns an error so that the run fails until record mode is
// switched off. The returned result is non-nil whenever images were produced.
func (c *Coordinator) Verify(ctx context.Context, unit render.Imageable, cfg models.SnapshotConfig, mode models.Mode) (*Result, error) {
	if unit == nil {
		return nil, &RecordError{Kind: UnableToCreateSnapshot, Err: errors.New("nothing to render")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot config: %w", err)
	}
	if err := c.prepare(unit, cfg.Layout); err != nil {
		return nil, err
	}

	switch mode {
	case models.ModeRecord:
		result, err := c.Record(ctx, unit, cfg)
		if err != nil {
			return result, err
		}
		return result, ErrSnapshotRecorded

	case models.ModeTest:
		exists, err := c.files.Exists(ctx, cfg, models.ImageReference)
		if err != nil {
			return nil, err
		}
		if !exists {
			return c.handleMissing(ctx, unit, cfg)
		}
		return c.Test(ctx, unit, cfg)

	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// Record renders unit and writes it as the reference image
func (c *Coordinator) Record(ctx context.Context, unit render.Imageable, cfg models.SnapshotConfig) (*Result, error) {
	log := c.logFor(cfg)

	bitmap, err := unit.Render(c.scaleFor(cfg))
	if err == nil && (bitmap == nil || bitmap.Bounds().Empty()) {
		err = render.ErrNoContext
	}
	if err != nil {
		return nil, &RecordError{Kind: UnableToCreateSnapshot, Err: err}
	}

	data, err := bitmap.PNG()
	if err != nil {
		return nil, &RecordError{Kind: UnableToCreateImageData, Err: err}
	}

	path, err := c.files.Write(ctx, data, cfg, models.ImageReference)
	if err != nil {
		return nil, &RecordError{Kind: UnableToWriteImageToDisk, Err: err}
	}

	log.Info(ctx, "snapshot recorded", logging.Fields{"path": path, "bytes": len(data)})
	return &Result{
		Outcome:   OutcomeRecorded,
		Reference: bitmap,
		Paths:     map[models.ImageType]string{models.ImageReference: path},
	}, nil
}

// Test renders unit and compares it against the stored reference.
// On a match stale diff and failure images are removed; on a mismatch they are written.
func (c *Coordinator) Test(ctx context.Context, unit render.Imageable, cfg models.SnapshotConfig) (*Result, error) {
	log := c.logFor(cfg)

	current, err := unit.Render(c.scaleFor(cfg))
	if err == nil && (current == nil || current.Bounds().Empty()) {
		err = render.ErrNoContext
	}
	if err != nil {
		return nil, &TestError{Kind: UnableToCreateSnapshot, Err: err}
	}

	refPath, err := c.files.Path(ctx, cfg, models.ImageReference)
	if err != nil {
		return nil, &TestError{Kind: UnableToGetRecordedImageData, Err: err}
	}
	data, err := c.files.Read(ctx, cfg, models.ImageReference)
	if err != nil {
		return nil, &TestError{Kind: UnableToGetRecordedImageData, Err: err}
	}
	reference, err := render.Decode(data, c.scaleFor(cfg))
	if err != nil {
		return nil, &TestError{Kind: UnableToGetRecordedImage, Err: err}
	}

	result := &Result{
		Reference: reference,
		Current:   current,
		Paths:     map[models.ImageType]string{models.ImageReference: refPath},
	}

	comparison, err := c.comparator.Compare(reference, current)
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, &TestError{Kind: ImagesAreDifferent, Reference: reference, Failed: current, Err: err}
	}

	if comparison.Equal() {
		if err := c.files.RemoveDiffAndFailure(ctx, cfg); err != nil {
			log.Warn(ctx, "failed to remove stale diff and failure images", logging.Fields{"error": err.Error()})
		}
		log.Debug(ctx, "snapshot matches reference", logging.Fields{"comparator": c.comparator.Name()})
		result.Outcome = OutcomePassed
		return result, nil
	}

	result.Outcome = OutcomeFailed
	log.Info(ctx, "snapshot differs from reference", logging.Fields{
		"comparator": c.comparator.Name(),
		"reason":     comparison.Reason,
	})
	c.storeArtifacts(ctx, cfg, result)

	return result, &TestError{
		Kind:       ImagesAreDifferent,
		Reference:  reference,
		Failed:     current,
		Comparison: comparison,
	}
}

// handleMissing applies the missing-reference policy
func (c *Coordinator) handleMissing(ctx context.Context, unit render.Imageable, cfg models.SnapshotConfig) (*Result, error) {
	switch c.policy {
	case models.FailMissing:
		path, err := c.files.Path(ctx, cfg, models.ImageReference)
		if err != nil {
			return nil, &TestError{Kind: UnableToGetRecordedImageData, Err: err}
		}
		return &Result{Outcome: OutcomeFailed}, &TestError{
			Kind: UnableToGetRecordedImageData,
			Err:  fmt.Errorf("%w: %s", ErrReferenceMissing, path),
		}

	case models.RecordAndPass:
		return c.Record(ctx, unit, cfg)

	default:
		result, err := c.Record(ctx, unit, cfg)
		if err != nil {
			return result, err
		}
		return result, ErrRecordedFirstTime
	}
}

// storeArtifacts writes the diff overlay and the failing render. Errors are
// logged and never change the outcome of the assertion.
func (c *Coordinator) storeArtifacts(ctx context.Context, cfg models.SnapshotConfig, result *Result) {
	log := c.logFor(cfg)

	diff, err := c.comparator.Diff(result.Current, result.Reference)
	if err != nil {
		log.Warn(ctx, "failed to create diff image", logging.Fields{"error": err.Error()})
		return
	}
	result.Diff = diff

	diffData, err := diff.PNG()
	if err != nil {
		log.Warn(ctx, "failed to encode diff image", logging.Fields{"error": err.Error()})
		return
	}
	failureData, err := result.Current.PNG()
	if err != nil {
		log.Warn(ctx, "failed to encode failure image", logging.Fields{"error": err.Error()})
		return
	}

	// A path is only returned for a write that succeeded
	diffPath, failurePath, err := c.files.StoreDiffAndFailure(ctx, diffData, failureData, cfg)
	if diffPath != "" {
		result.Paths[models.ImageDiff] = diffPath
	}
	if failurePath != "" {
		result.Paths[models.ImageFailure] = failurePath
	}
	if err != nil {
		log.Warn(ctx, "failed to store diff and failure images", logging.Fields{"error": err.Error()})
	}
}

// prepare lays out view-backed units and rejects empty ones
func (c *Coordinator) prepare(unit render.Imageable, style models.LayoutStyle) error {
	l, ok := unit.(render.Layoutable)
	if !ok || l.View() == nil {
		return nil
	}

	v := l.View()
	if c.layout != nil {
		c.layout.LayOut(v, style)
	}

	bounds := v.Bounds()
	if bounds.Width <= 0 {
		return ErrNoWidth
	}
	if bounds.Height <= 0 {
		return ErrNoHeight
	}
	return nil
}

func (c *Coordinator) logFor(cfg models.SnapshotConfig) logging.Logger {
	return c.logger.WithFields(logging.Fields{
		"group":    cfg.Identity.Group,
		"function": cfg.Identity.Function,
	})
}
