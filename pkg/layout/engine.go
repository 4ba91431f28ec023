package layout

import (
	"github.com/sdejongh/pixeltest/pkg/models"
	"github.com/sdejongh/pixeltest/pkg/view"
)

// Coordinator applies a layout style to a view before it is rendered
type Coordinator interface {
	// LayOut constrains v according to style and forces a layout pass
	LayOut(v *view.View, style models.LayoutStyle)
}

// Engine is the production layout coordinator
type Engine struct{}

// NewEngine creates a new layout engine
func NewEngine() *Engine {
	return &Engine{}
}

// LayOut disables autoresizing on v, pins the dimensions the style fixes,
// embeds v edge to edge in a fresh parent and lays out the parent so that
// sizes depending on ancestors resolve before capture.
func (e *Engine) LayOut(v *view.View, style models.LayoutStyle) {
	v.TranslatesAutoresizing = false

	if w, ok := style.Width(); ok {
		v.PinWidth(w)
	}
	if h, ok := style.Height(); ok {
		v.PinHeight(h)
	}

	parent := view.New(nil)
	parent.AddSubview(v)
	v.PinEdgesToSuperview()

	parent.SetNeedsLayout()
	parent.LayoutIfNeeded()
}
