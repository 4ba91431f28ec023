package compare

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"

	"github.com/sdejongh/pixeltest/pkg/render"
)

// overlayOpacity is the alpha the second image is drawn at
const overlayOpacity = 0.5

// Diff overlays b on a: a is drawn opaque, b is difference-blended against
// white and composited at half opacity. The result is sized to the larger
// of the two inputs in each dimension.
func Diff(a, b *render.Bitmap) (*render.Bitmap, error) {
	if a == nil || b == nil {
		return nil, render.ErrNoContext
	}

	ab, bb := a.Bounds(), b.Bounds()
	w := max(ab.Dx(), bb.Dx())
	h := max(ab.Dy(), bb.Dy())
	if w <= 0 || h <= 0 {
		return nil, render.ErrNoContext
	}

	base := pad(a.Image, w, h)
	top := pad(b.Image, w, h)

	// The blend only touches the overlay layer, never the base
	white := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(white, white.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	layer := blend.Difference(top, white)

	out := blend.Opacity(base, layer, overlayOpacity)

	return &render.Bitmap{Image: out, Scale: a.Scale}, nil
}

// pad copies img onto a transparent canvas of w x h anchored at the origin
func pad(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, img.Bounds().Sub(img.Bounds().Min), img, img.Bounds().Min, draw.Src)
	return dst
}
