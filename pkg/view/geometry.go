package view

import (
	"image"
	"math"
)

// NoIntrinsicMetric marks a dimension that is not constrained in a size proposal
const NoIntrinsicMetric = -1.0

// Size is a width and height in points
type Size struct {
	Width  float64
	Height float64
}

// Unconstrained returns a proposal with neither dimension fixed
func Unconstrained() Size {
	return Size{Width: NoIntrinsicMetric, Height: NoIntrinsicMetric}
}

// IsZero reports whether either dimension is empty
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is a frame in points relative to the parent
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Size returns the size of the rect
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Offset returns the rect moved by dx, dy
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Inset shrinks the rect by d on every side
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Pixels converts the rect to integer pixel bounds at the given scale,
// rounding outwards so partially covered pixels are included.
func (r Rect) Pixels(scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X*scale)),
		int(math.Floor(r.Y*scale)),
		int(math.Ceil((r.X+r.Width)*scale)),
		int(math.Ceil((r.Y+r.Height)*scale)),
	)
}
