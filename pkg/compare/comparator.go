package compare

import (
	"github.com/sdejongh/pixeltest/pkg/render"
)

// Result represents the outcome of comparing two bitmaps
type Result string

const (
	// Same indicates the bitmaps are identical
	Same Result = "same"
	// Different indicates the bitmaps differ
	Different Result = "different"
)

// Comparison holds the result of comparing two bitmaps
type Comparison struct {
	Result Result
	Reason string
	// Offset is the first differing byte of the encoded images, -1 when not applicable
	Offset int64
}

// Equal reports whether the comparison found no difference
func (c *Comparison) Equal() bool {
	return c != nil && c.Result == Same
}

// ImageComparator defines the interface for image comparison algorithms
type ImageComparator interface {
	// Compare checks two bitmaps for equality
	Compare(a, b *render.Bitmap) (*Comparison, error)

	// Diff produces an overlay highlighting differences between a and b
	Diff(a, b *render.Bitmap) (*render.Bitmap, error)

	// Name returns the name of the comparison method
	Name() string
}
