package compare

import (
	"bytes"
	"fmt"

	"github.com/sdejongh/pixeltest/pkg/render"
)

// Exact compares bitmaps by pixel size and then by encoded PNG bytes.
// Any re-encoding or colour difference counts as a mismatch.
type Exact struct{}

// NewExact creates a new exact comparator
func NewExact() *Exact {
	return &Exact{}
}

// Compare compares two bitmaps
func (c *Exact) Compare(a, b *render.Bitmap) (*Comparison, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("cannot compare nil bitmap")
	}

	// Quick check: if sizes differ, images are different
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return &Comparison{
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy()),
			Offset: -1,
		}, nil
	}

	aData, err := a.PNG()
	if err != nil {
		return nil, err
	}
	bData, err := b.PNG()
	if err != nil {
		return nil, err
	}

	if offset := firstDifference(aData, bData); offset >= 0 {
		return &Comparison{
			Result: Different,
			Reason: fmt.Sprintf("png content differs at byte offset %d", offset),
			Offset: offset,
		}, nil
	}

	return &Comparison{
		Result: Same,
		Reason: fmt.Sprintf("png content matches (%d bytes)", len(aData)),
		Offset: -1,
	}, nil
}

// Diff builds the overlay image
func (c *Exact) Diff(a, b *render.Bitmap) (*render.Bitmap, error) {
	return Diff(a, b)
}

// Name returns the comparator name
func (c *Exact) Name() string {
	return "exact"
}

// Equal reports whether two bitmaps have the same size and encoded bytes
func Equal(a, b *render.Bitmap) bool {
	cmp, err := NewExact().Compare(a, b)
	return err == nil && cmp.Equal()
}

// firstDifference returns the first offset where a and b differ, or -1
func firstDifference(a, b []byte) int64 {
	if bytes.Equal(a, b) {
		return -1
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	return int64(n)
}
