package view

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Content draws into a view's frame and reports the size it would like
type Content interface {
	// IntrinsicSize returns the natural size given a proposal.
	// Proposal dimensions equal to NoIntrinsicMetric are unconstrained.
	IntrinsicSize(proposal Size) Size

	// Draw renders the content into frame
	Draw(c *Canvas, frame Rect)
}

// Fill paints its whole frame and has no intrinsic size
type Fill struct {
	Color color.Color
}

// IntrinsicSize returns the proposal with unconstrained dimensions collapsed to zero
func (f Fill) IntrinsicSize(proposal Size) Size {
	return Size{Width: max(proposal.Width, 0), Height: max(proposal.Height, 0)}
}

// Draw fills the frame
func (f Fill) Draw(c *Canvas, frame Rect) {
	c.Fill(frame, f.Color)
}

// Box is a solid rectangle with a fixed intrinsic size
type Box struct {
	Size  Size
	Color color.Color
}

// IntrinsicSize returns the box size
func (b Box) IntrinsicSize(proposal Size) Size {
	return b.Size
}

// Draw fills the frame
func (b Box) Draw(c *Canvas, frame Rect) {
	c.Fill(frame, b.Color)
}

// Label draws text in a fixed-width bitmap font, wrapping words when its width is constrained
type Label struct {
	Text  string
	Color color.Color
	Face  font.Face
	// Padding is added on every side of the text
	Padding float64
}

func (l Label) face() font.Face {
	if l.Face != nil {
		return l.Face
	}
	return basicfont.Face7x13
}

func (l Label) color() color.Color {
	if l.Color != nil {
		return l.Color
	}
	return color.Black
}

func (l Label) lineHeight() float64 {
	return float64(l.face().Metrics().Height.Ceil())
}

func (l Label) measure(s string) float64 {
	return float64(font.MeasureString(l.face(), s).Ceil())
}

// lines splits the text into lines no wider than width; width < 0 disables wrapping
func (l Label) lines(width float64) []string {
	var out []string
	for _, paragraph := range strings.Split(l.Text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if width >= 0 && l.measure(candidate) > width {
				out = append(out, line)
				line = w
				continue
			}
			line = candidate
		}
		out = append(out, line)
	}
	return out
}

// IntrinsicSize measures the text, wrapping at the proposed width
func (l Label) IntrinsicSize(proposal Size) Size {
	wrap := NoIntrinsicMetric
	if proposal.Width >= 0 {
		wrap = max(proposal.Width-2*l.Padding, 0)
	}

	var width float64
	lines := l.lines(wrap)
	for _, line := range lines {
		width = max(width, l.measure(line))
	}
	return Size{
		Width:  width + 2*l.Padding,
		Height: float64(len(lines))*l.lineHeight() + 2*l.Padding,
	}
}

// Draw renders the wrapped lines from the top-left of the frame
func (l Label) Draw(c *Canvas, frame Rect) {
	inner := frame.Inset(l.Padding)
	y := inner.Y
	for _, line := range l.lines(inner.Width) {
		if y >= inner.Y+inner.Height {
			break
		}
		c.Text(inner.X, y, line, l.color(), l.face())
		y += l.lineHeight()
	}
}

// Axis is the direction a Stack arranges its items
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// Stack arranges content items one after another along an axis
type Stack struct {
	Axis    Axis
	Items   []Content
	Spacing float64
	Padding float64
}

func (s Stack) gaps() float64 {
	if len(s.Items) < 2 {
		return 0
	}
	return float64(len(s.Items)-1) * s.Spacing
}

// itemProposal passes the cross-axis constraint down to each item
func (s Stack) itemProposal(proposal Size) Size {
	p := Unconstrained()
	if s.Axis == Vertical && proposal.Width >= 0 {
		p.Width = max(proposal.Width-2*s.Padding, 0)
	}
	if s.Axis == Horizontal && proposal.Height >= 0 {
		p.Height = max(proposal.Height-2*s.Padding, 0)
	}
	return p
}

// IntrinsicSize sums item sizes along the axis and takes the maximum across it
func (s Stack) IntrinsicSize(proposal Size) Size {
	p := s.itemProposal(proposal)
	var along, across float64
	for _, item := range s.Items {
		size := item.IntrinsicSize(p)
		if s.Axis == Vertical {
			along += size.Height
			across = max(across, size.Width)
		} else {
			along += size.Width
			across = max(across, size.Height)
		}
	}
	along += s.gaps() + 2*s.Padding
	across += 2 * s.Padding

	if s.Axis == Vertical {
		return Size{Width: across, Height: along}
	}
	return Size{Width: along, Height: across}
}

// Draw places each item at its intrinsic length, stretched across the axis
func (s Stack) Draw(c *Canvas, frame Rect) {
	inner := frame.Inset(s.Padding)
	p := Unconstrained()
	if s.Axis == Vertical {
		p.Width = inner.Width
	} else {
		p.Height = inner.Height
	}

	offset := 0.0
	for _, item := range s.Items {
		size := item.IntrinsicSize(p)
		var r Rect
		if s.Axis == Vertical {
			r = Rect{X: inner.X, Y: inner.Y + offset, Width: inner.Width, Height: size.Height}
			offset += size.Height + s.Spacing
		} else {
			r = Rect{X: inner.X + offset, Y: inner.Y, Width: size.Width, Height: inner.Height}
			offset += size.Width + s.Spacing
		}
		item.Draw(c, r)
	}
}

// Picture draws an image scaled to its frame
type Picture struct {
	Image image.Image
}

// IntrinsicSize returns the image size in pixels treated as points
func (p Picture) IntrinsicSize(proposal Size) Size {
	if p.Image == nil {
		return Size{}
	}
	b := p.Image.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Draw composites the image over the frame
func (p Picture) Draw(c *Canvas, frame Rect) {
	if p.Image == nil {
		return
	}
	c.DrawImage(frame, p.Image)
}
