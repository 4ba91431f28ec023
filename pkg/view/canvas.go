package view

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is a 1x RGBA drawing surface in point coordinates
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a transparent canvas of the given pixel size
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the backing image
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Fill composites a solid colour over the rect
func (c *Canvas) Fill(r Rect, col color.Color) {
	draw.Draw(c.img, r.Pixels(1), image.NewUniform(col), image.Point{}, draw.Over)
}

// Text draws a single line of text with its top-left corner at x, y
func (c *Canvas) Text(x, y float64, s string, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(int(x), int(y)+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// DrawImage composites img over the rect, resampling it when the sizes differ
func (c *Canvas) DrawImage(r Rect, img image.Image) {
	dst := r.Pixels(1)
	if dst.Empty() {
		return
	}
	src := img
	if img.Bounds().Dx() != dst.Dx() || img.Bounds().Dy() != dst.Dy() {
		src = transform.Resize(img, dst.Dx(), dst.Dy(), transform.Linear)
	}
	draw.Draw(c.img, dst, src, src.Bounds().Min, draw.Over)
}
