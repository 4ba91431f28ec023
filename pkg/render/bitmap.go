package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"

	"github.com/sdejongh/pixeltest/pkg/view"
)

var (
	// ErrNoContext is returned when a drawing context cannot be allocated
	ErrNoContext = errors.New("unable to allocate drawing context")
	// ErrNotPNG is returned when decoding data that is not a PNG image
	ErrNotPNG = errors.New("data is not a png image")
)

// maxPixels bounds the area of any drawing context
const maxPixels = 1 << 28

// Bitmap is a rasterised image together with the scale it was drawn at
type Bitmap struct {
	Image image.Image
	Scale float64
}

// Bounds returns the pixel bounds
func (b *Bitmap) Bounds() image.Rectangle {
	return b.Image.Bounds()
}

// Size returns the size in points
func (b *Bitmap) Size() view.Size {
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	bounds := b.Bounds()
	return view.Size{
		Width:  float64(bounds.Dx()) / scale,
		Height: float64(bounds.Dy()) / scale,
	}
}

// PNG encodes the bitmap
func (b *Bitmap) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, b.Image); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render returns the bitmap itself, resampled when a different explicit scale is asked for.
// This lets screenshots flow through the same verification path as views.
func (b *Bitmap) Render(contextScale float64) (*Bitmap, error) {
	if contextScale <= 0 || contextScale == b.Scale || b.Scale <= 0 {
		return b, nil
	}
	bounds := b.Bounds()
	w, h, err := contextSize(float64(bounds.Dx())/b.Scale, float64(bounds.Dy())/b.Scale, contextScale)
	if err != nil {
		return nil, err
	}
	return &Bitmap{
		Image: transform.Resize(b.Image, w, h, transform.NearestNeighbor),
		Scale: contextScale,
	}, nil
}

// Decode parses PNG data into a bitmap drawn at scale
func Decode(data []byte, scale float64) (*Bitmap, error) {
	if !filetype.Is(data, "png") {
		return nil, ErrNotPNG
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	return &Bitmap{Image: img, Scale: scale}, nil
}

// Clip removes a band of fromTop points from the top of the bitmap
func Clip(b *Bitmap, fromTop float64) (*Bitmap, error) {
	if fromTop <= 0 {
		return b, nil
	}
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	bounds := b.Bounds()
	cut := int(math.Ceil(fromTop * scale))
	if cut >= bounds.Dy() {
		return nil, ErrNoContext
	}
	rect := image.Rect(bounds.Min.X, bounds.Min.Y+cut, bounds.Max.X, bounds.Max.Y)
	return &Bitmap{Image: transform.Crop(b.Image, rect), Scale: b.Scale}, nil
}

// contextSize converts a point size to pixel dimensions, rejecting empty or oversized areas
func contextSize(width, height, scale float64) (int, int, error) {
	w := int(math.Ceil(width * scale))
	h := int(math.Ceil(height * scale))
	if w <= 0 || h <= 0 || int64(w)*int64(h) > maxPixels {
		return 0, 0, ErrNoContext
	}
	return w, h, nil
}
