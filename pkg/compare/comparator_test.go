package compare

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/pixeltest/pkg/render"
)

// solid creates a bitmap filled with a single colour
func solid(w, h int, c color.Color) *render.Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return &render.Bitmap{Image: img, Scale: 1}
}

func TestExactCompare(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	comparator := NewExact()

	t.Run("IdenticalImages", func(t *testing.T) {
		cmp, err := comparator.Compare(solid(4, 4, red), solid(4, 4, red))
		require.NoError(t, err)
		assert.Equal(t, Same, cmp.Result)
		assert.True(t, cmp.Equal())
		assert.Equal(t, int64(-1), cmp.Offset)
	})

	t.Run("OnePixelDiffers", func(t *testing.T) {
		a := solid(4, 4, red)
		b := solid(4, 4, red)
		b.Image.(*image.RGBA).SetRGBA(2, 2, color.RGBA{G: 255, A: 255})

		cmp, err := comparator.Compare(a, b)
		require.NoError(t, err)
		assert.Equal(t, Different, cmp.Result)
		assert.GreaterOrEqual(t, cmp.Offset, int64(0))
		assert.Contains(t, cmp.Reason, "byte offset")
	})

	t.Run("DifferentSizes", func(t *testing.T) {
		cmp, err := comparator.Compare(solid(4, 4, red), solid(4, 5, red))
		require.NoError(t, err)
		assert.Equal(t, Different, cmp.Result)
		assert.Contains(t, cmp.Reason, "size mismatch")
	})

	t.Run("DifferentSizesTransparent", func(t *testing.T) {
		transparent := color.RGBA{}
		assert.False(t, Equal(solid(1, 1, transparent), solid(2, 2, transparent)))
	})

	t.Run("NilBitmap", func(t *testing.T) {
		_, err := comparator.Compare(nil, solid(1, 1, red))
		assert.Error(t, err)
		assert.False(t, Equal(nil, nil))
	})
}

func TestEqualAfterRoundTrip(t *testing.T) {
	a := solid(3, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	data, err := a.PNG()
	require.NoError(t, err)

	decoded, err := render.Decode(data, 1)
	require.NoError(t, err)
	assert.True(t, Equal(a, decoded))
}

func TestDiffSizing(t *testing.T) {
	a := solid(10, 3, color.White)
	b := solid(4, 8, color.Black)

	for _, pair := range [][2]*render.Bitmap{{a, b}, {b, a}} {
		out, err := Diff(pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, 10, out.Bounds().Dx())
		assert.Equal(t, 8, out.Bounds().Dy())
	}
}

func TestDiffOfIdenticalImagesIsUniform(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	out, err := NewExact().Diff(solid(5, 5, c), solid(5, 5, c))
	require.NoError(t, err)

	first := out.Image.At(0, 0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, first, out.Image.At(x, y))
		}
	}
}

func TestDiffHighlightsChange(t *testing.T) {
	a := solid(4, 4, color.Black)
	b := solid(4, 4, color.Black)
	b.Image.(*image.RGBA).SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := Diff(a, b)
	require.NoError(t, err)
	assert.NotEqual(t, out.Image.At(0, 0), out.Image.At(1, 1))
}

func TestDiffEmpty(t *testing.T) {
	empty := &render.Bitmap{Image: image.NewRGBA(image.Rect(0, 0, 0, 0)), Scale: 1}
	_, err := Diff(empty, empty)
	assert.ErrorIs(t, err, render.ErrNoContext)
}

func TestComparatorName(t *testing.T) {
	var c ImageComparator = NewExact()
	assert.Equal(t, "exact", c.Name())
}
