package snapshot

import (
	"errors"

	"github.com/sdejongh/pixeltest/pkg/compare"
	"github.com/sdejongh/pixeltest/pkg/render"
)

var (
	// ErrNoWidth is returned when a view is zero points wide after layout
	ErrNoWidth = errors.New("view has no width after layout, check its constraints or use a fixed layout style")
	// ErrNoHeight is returned when a view is zero points tall after layout
	ErrNoHeight = errors.New("view has no height after layout, check its constraints or use a fixed layout style")

	// ErrSnapshotRecorded ends every successful record-mode assertion
	ErrSnapshotRecorded = errors.New("Snapshot recorded (see attached image in logs), disable record mode and re-run tests to verify.")
	// ErrRecordedFirstTime ends a test-mode assertion that had no reference to compare against
	ErrRecordedFirstTime = errors.New("No reference image existed, so this snapshot was recorded for the first time. Review it, then re-run tests to verify.")
	// ErrReferenceMissing is wrapped when the policy forbids recording a missing reference
	ErrReferenceMissing = errors.New("reference image does not exist")
)

// Kind classifies record and test failures
type Kind int

const (
	// UnableToCreateSnapshot means the unit could not be laid out or rendered
	UnableToCreateSnapshot Kind = iota + 1
	// UnableToCreateImageData means the render could not be encoded as PNG
	UnableToCreateImageData
	// UnableToWriteImageToDisk means the reference image could not be stored
	UnableToWriteImageToDisk
	// UnableToGetRecordedImageData means the reference image could not be read
	UnableToGetRecordedImageData
	// UnableToGetRecordedImage means the reference data is not a decodable PNG
	UnableToGetRecordedImage
	// ImagesAreDifferent means the render does not match its reference
	ImagesAreDifferent
)

// String returns the failure message reported for the kind
func (k Kind) String() string {
	switch k {
	case UnableToCreateSnapshot:
		return "Unable to create snapshot"
	case UnableToCreateImageData:
		return "Unable to create image data"
	case UnableToWriteImageToDisk:
		return "Unable to write image data to disk"
	case UnableToGetRecordedImageData:
		return "Unable to get recorded image data"
	case UnableToGetRecordedImage:
		return "Unable to get recorded image"
	case ImagesAreDifferent:
		return "Snapshot test failed, images are different"
	default:
		return "unknown snapshot failure"
	}
}

// RecordError is a failure while writing a reference image
type RecordError struct {
	Kind Kind
	Err  error
}

func (e *RecordError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is matches another RecordError of the same kind
func (e *RecordError) Is(target error) bool {
	t, ok := target.(*RecordError)
	return ok && t.Kind == e.Kind
}

// TestError is a failure while testing against a reference image.
// For ImagesAreDifferent, Reference and Failed carry both bitmaps.
type TestError struct {
	Kind       Kind
	Reference  *render.Bitmap
	Failed     *render.Bitmap
	Comparison *compare.Comparison
	Err        error
}

func (e *TestError) Error() string {
	msg := e.Kind.String()
	if e.Kind == ImagesAreDifferent && e.Comparison != nil && e.Comparison.Reason != "" {
		msg += " (" + e.Comparison.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TestError) Unwrap() error {
	return e.Err
}

// Is matches another TestError of the same kind
func (e *TestError) Is(target error) bool {
	t, ok := target.(*TestError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrImagesAreDifferent      = &TestError{Kind: ImagesAreDifferent}
	ErrUnableToWriteImage      = &RecordError{Kind: UnableToWriteImageToDisk}
	ErrRecordedImageUnreadable = &TestError{Kind: UnableToGetRecordedImage}
)
