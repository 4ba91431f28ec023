package render

import (
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/sdejongh/pixeltest/pkg/view"
)

// Imageable is anything that can be rasterised into a bitmap.
// A contextScale of zero means the screen's native density.
type Imageable interface {
	Render(contextScale float64) (*Bitmap, error)
}

// Layoutable is an Imageable backed by a view that can be laid out before capture
type Layoutable interface {
	Imageable
	View() *view.View
}

// Screen describes the display a render targets
type Screen struct {
	NativeScale float64
}

// NewScreen creates a screen with the given native density, defaulting to 1x
func NewScreen(nativeScale float64) Screen {
	if nativeScale <= 0 {
		nativeScale = 1
	}
	return Screen{NativeScale: nativeScale}
}

// Resolve turns a context scale into a concrete density
func (s Screen) Resolve(contextScale float64) float64 {
	if contextScale > 0 {
		return contextScale
	}
	if s.NativeScale > 0 {
		return s.NativeScale
	}
	return 1
}

// Unit wraps a view so it can be rendered on this screen
func (s Screen) Unit(v *view.View) *Unit {
	return &Unit{view: v, screen: s}
}

// Unit is a renderable view
type Unit struct {
	view   *view.View
	screen Screen
}

// View returns the wrapped view
func (u *Unit) View() *view.View {
	return u.view
}

// Render rasterises the view's bounds
func (u *Unit) Render(contextScale float64) (*Bitmap, error) {
	return u.RenderRegion(u.view.Bounds(), contextScale)
}

// RenderRegion rasterises a sub-rectangle of the view, given in the view's coordinates
func (u *Unit) RenderRegion(region view.Rect, contextScale float64) (*Bitmap, error) {
	scale := u.screen.Resolve(contextScale)
	bounds := u.view.Bounds()

	base, err := u.draw(bounds)
	if err != nil {
		return nil, err
	}

	w, h, err := contextSize(bounds.Width, bounds.Height, scale)
	if err != nil {
		return nil, err
	}
	var img image.Image = base
	if base.Bounds().Dx() != w || base.Bounds().Dy() != h {
		img = transform.Resize(base, w, h, transform.NearestNeighbor)
	}

	if region == bounds {
		return &Bitmap{Image: img, Scale: scale}, nil
	}

	crop := region.Pixels(scale).Intersect(img.Bounds())
	if crop.Empty() {
		return nil, ErrNoContext
	}
	return &Bitmap{Image: transform.Crop(img, crop), Scale: scale}, nil
}

// draw renders the view at 1x
func (u *Unit) draw(bounds view.Rect) (*image.RGBA, error) {
	w, h, err := contextSize(bounds.Width, bounds.Height, 1)
	if err != nil {
		return nil, err
	}
	canvas := view.NewCanvas(w, h)
	u.view.Draw(canvas)
	return canvas.Image(), nil
}
