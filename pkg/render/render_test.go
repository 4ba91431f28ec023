package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/pixeltest/pkg/view"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func sizedView(w, h float64, c color.Color) *view.View {
	v := view.New(view.Fill{Color: c})
	v.Frame = view.Rect{Width: w, Height: h}
	return v
}

func TestUnitRender(t *testing.T) {
	t.Run("ExplicitScale", func(t *testing.T) {
		unit := NewScreen(1).Unit(sizedView(10, 5, red))
		bm, err := unit.Render(2)
		require.NoError(t, err)
		assert.Equal(t, 20, bm.Bounds().Dx())
		assert.Equal(t, 10, bm.Bounds().Dy())
		assert.Equal(t, 2.0, bm.Scale)
		assert.Equal(t, view.Size{Width: 10, Height: 5}, bm.Size())
	})

	t.Run("ZeroUsesNativeScale", func(t *testing.T) {
		unit := NewScreen(3).Unit(sizedView(4, 4, red))
		bm, err := unit.Render(0)
		require.NoError(t, err)
		assert.Equal(t, 12, bm.Bounds().Dx())
		assert.Equal(t, 3.0, bm.Scale)
	})

	t.Run("ZeroAreaFails", func(t *testing.T) {
		unit := NewScreen(1).Unit(sizedView(0, 4, red))
		_, err := unit.Render(1)
		assert.True(t, errors.Is(err, ErrNoContext))
	})

	t.Run("OversizedFails", func(t *testing.T) {
		unit := NewScreen(1).Unit(sizedView(1e6, 1e6, red))
		_, err := unit.Render(1)
		assert.True(t, errors.Is(err, ErrNoContext))
	})

	t.Run("Deterministic", func(t *testing.T) {
		unit := NewScreen(1).Unit(sizedView(6, 6, blue))
		a, err := unit.Render(1)
		require.NoError(t, err)
		b, err := unit.Render(1)
		require.NoError(t, err)

		pa, err := a.PNG()
		require.NoError(t, err)
		pb, err := b.PNG()
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	})
}

func TestUnitRenderRegion(t *testing.T) {
	root := sizedView(8, 8, red)
	child := view.New(view.Fill{Color: blue})
	child.Frame = view.Rect{X: 4, Y: 4, Width: 4, Height: 4}
	root.AddSubview(child)

	unit := NewScreen(1).Unit(root)
	bm, err := unit.RenderRegion(view.Rect{X: 4, Y: 4, Width: 4, Height: 4}, 1)
	require.NoError(t, err)

	b := bm.Bounds()
	assert.Equal(t, 4, b.Dx())
	assert.Equal(t, 4, b.Dy())
	r, g, bl, a := bm.Image.At(b.Min.X, b.Min.Y).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff, 0xffff}, []uint32{r, g, bl, a})

	_, err = unit.RenderRegion(view.Rect{X: 20, Y: 20, Width: 1, Height: 1}, 1)
	assert.True(t, errors.Is(err, ErrNoContext))
}

func TestUnitIsLayoutable(t *testing.T) {
	v := sizedView(1, 1, red)
	var l Layoutable = NewScreen(1).Unit(v)
	assert.Same(t, v, l.View())
}

func TestDecode(t *testing.T) {
	bm, err := NewScreen(1).Unit(sizedView(3, 2, red)).Render(1)
	require.NoError(t, err)
	data, err := bm.PNG()
	require.NoError(t, err)

	decoded, err := Decode(data, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, decoded.Scale)
	assert.Equal(t, view.Size{Width: 1.5, Height: 1}, decoded.Size())

	again, err := decoded.PNG()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	_, err = Decode([]byte("not an image"), 1)
	assert.True(t, errors.Is(err, ErrNotPNG))
}

func TestBitmapPNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 120})
	bm := &Bitmap{Image: img, Scale: 1}

	data, err := bm.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())
	assert.Equal(t, color.NRGBAModel.Convert(img.At(1, 1)), color.NRGBAModel.Convert(decoded.At(1, 1)))
	assert.Equal(t, color.NRGBAModel.Convert(img.At(0, 0)), color.NRGBAModel.Convert(decoded.At(0, 0)))
}

func TestBitmapRender(t *testing.T) {
	bm := &Bitmap{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Scale: 2}

	same, err := bm.Render(0)
	require.NoError(t, err)
	assert.Same(t, bm, same)

	bigger, err := bm.Render(4)
	require.NoError(t, err)
	assert.Equal(t, 8, bigger.Bounds().Dx())
}

func TestClip(t *testing.T) {
	bm := &Bitmap{Image: image.NewRGBA(image.Rect(0, 0, 10, 50)), Scale: 2}

	clipped, err := Clip(bm, 5)
	require.NoError(t, err)
	assert.Equal(t, 40, clipped.Bounds().Dy())
	assert.Equal(t, 10, clipped.Bounds().Dx())

	unchanged, err := Clip(bm, 0)
	require.NoError(t, err)
	assert.Same(t, bm, unchanged)

	_, err = Clip(bm, 25)
	assert.True(t, errors.Is(err, ErrNoContext))
}
