// Package view is a small deterministic view hierarchy with constraint-style sizing.
// It stands in for a platform UI toolkit: views can pin their width and height,
// pin their edges to a superview, and resolve unpinned dimensions from the
// intrinsic size of their content.
package view

import "image/color"

// View is a node in the view hierarchy
type View struct {
	// Content draws the view and reports its intrinsic size
	Content Content
	// Background is filled behind the content when set
	Background color.Color
	// TranslatesAutoresizing keeps Frame as set by the caller and ignores constraints.
	// New views start with it enabled.
	TranslatesAutoresizing bool
	// Frame is the view's position and size in its superview
	Frame Rect

	width       *float64
	height      *float64
	edgesPinned bool
	needsLayout bool
	superview   *View
	subviews    []*View
}

// New creates a view drawing the given content
func New(content Content) *View {
	return &View{
		Content:                content,
		TranslatesAutoresizing: true,
		needsLayout:            true,
	}
}

// PinWidth adds a width constraint
func (v *View) PinWidth(w float64) {
	v.width = &w
	v.SetNeedsLayout()
}

// PinHeight adds a height constraint
func (v *View) PinHeight(h float64) {
	v.height = &h
	v.SetNeedsLayout()
}

// PinnedWidth returns the width constraint if one is set
func (v *View) PinnedWidth() (float64, bool) {
	if v.width == nil {
		return 0, false
	}
	return *v.width, true
}

// PinnedHeight returns the height constraint if one is set
func (v *View) PinnedHeight() (float64, bool) {
	if v.height == nil {
		return 0, false
	}
	return *v.height, true
}

// AddSubview appends a child, removing it from any previous superview
func (v *View) AddSubview(child *View) {
	child.RemoveFromSuperview()
	child.superview = v
	v.subviews = append(v.subviews, child)
	v.SetNeedsLayout()
}

// RemoveFromSuperview detaches the view from its parent
func (v *View) RemoveFromSuperview() {
	parent := v.superview
	if parent == nil {
		return
	}
	for i, s := range parent.subviews {
		if s == v {
			parent.subviews = append(parent.subviews[:i], parent.subviews[i+1:]...)
			break
		}
	}
	v.superview = nil
	v.edgesPinned = false
	parent.SetNeedsLayout()
}

// PinEdgesToSuperview constrains all four edges to the superview's edges
func (v *View) PinEdgesToSuperview() {
	v.edgesPinned = true
	if v.superview != nil {
		v.superview.SetNeedsLayout()
	}
}

// EdgesPinned reports whether the view is pinned edge to edge in its superview
func (v *View) EdgesPinned() bool {
	return v.edgesPinned
}

// Superview returns the parent view
func (v *View) Superview() *View {
	return v.superview
}

// Subviews returns the children in drawing order
func (v *View) Subviews() []*View {
	return v.subviews
}

// SetNeedsLayout marks the view as needing a layout pass
func (v *View) SetNeedsLayout() {
	v.needsLayout = true
}

// NeedsLayout reports whether a layout pass is pending
func (v *View) NeedsLayout() bool {
	return v.needsLayout
}

// Bounds returns the view's own coordinate space
func (v *View) Bounds() Rect {
	return Rect{Width: v.Frame.Width, Height: v.Frame.Height}
}

// LayoutIfNeeded runs a synchronous layout pass over the view and its subtree
func (v *View) LayoutIfNeeded() {
	if v.hugsSubview() {
		size := v.fittingSize(Unconstrained())
		v.Frame.Width, v.Frame.Height = size.Width, size.Height
	} else if !v.TranslatesAutoresizing && v.superview == nil {
		size := v.fittingSize(Unconstrained())
		v.Frame.Width, v.Frame.Height = size.Width, size.Height
	}
	v.layoutSubviews()
}

func (v *View) layoutSubviews() {
	for _, s := range v.subviews {
		if !s.TranslatesAutoresizing {
			if s.edgesPinned {
				s.Frame = v.Bounds()
			} else {
				size := s.fittingSize(Unconstrained())
				s.Frame.Width, s.Frame.Height = size.Width, size.Height
			}
		}
		s.layoutSubviews()
	}
	v.needsLayout = false
}

// hugsSubview reports whether an unconstrained view takes its size from
// an edge-pinned child.
func (v *View) hugsSubview() bool {
	return v.TranslatesAutoresizing && v.pinnedSubview() != nil
}

func (v *View) pinnedSubview() *View {
	for _, s := range v.subviews {
		if s.edgesPinned && !s.TranslatesAutoresizing {
			return s
		}
	}
	return nil
}

// fittingSize resolves the view's size from its constraints, an outer
// proposal and the intrinsic size of its content. Own constraints win.
func (v *View) fittingSize(outer Size) Size {
	proposal := outer
	if v.width != nil {
		proposal.Width = *v.width
	}
	if v.height != nil {
		proposal.Height = *v.height
	}
	if proposal.Width >= 0 && proposal.Height >= 0 {
		return proposal
	}

	var intrinsic Size
	if child := v.pinnedSubview(); child != nil {
		intrinsic = child.fittingSize(proposal)
	} else if v.Content != nil {
		intrinsic = v.Content.IntrinsicSize(proposal)
	}

	if proposal.Width < 0 {
		proposal.Width = intrinsic.Width
	}
	if proposal.Height < 0 {
		proposal.Height = intrinsic.Height
	}
	return proposal
}

// Draw renders the view and its subtree onto the canvas with the view's
// own origin at the canvas origin.
func (v *View) Draw(c *Canvas) {
	v.draw(c, 0, 0)
}

func (v *View) draw(c *Canvas, ox, oy float64) {
	frame := v.Bounds().Offset(ox, oy)
	if v.Background != nil {
		c.Fill(frame, v.Background)
	}
	if v.Content != nil {
		v.Content.Draw(c, frame)
	}
	for _, s := range v.subviews {
		s.draw(c, ox+s.Frame.X, oy+s.Frame.Y)
	}
}
