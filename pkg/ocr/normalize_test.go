package ocr

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// digitLike draws a dark vertical bar with some speckle on a light
// background, roughly what a captured "1" looks like.
func digitLike(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{230, 225, 220, 255}
			if x >= w/2-2 && x <= w/2+2 && y > 3 && y < h-3 {
				c = color.RGBA{20, 30, 40, 255}
			}
			if (x*7+y*13)%29 == 0 {
				c = color.RGBA{120, 120, 120, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNormalizeDoublesSize(t *testing.T) {
	out, err := Normalize(digitLike(54, 54))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 108, 108), out.Bounds())

	out, err = Normalize(digitLike(74, 30))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 148, 60), out.Bounds())
}

func TestNormalizeIsBinary(t *testing.T) {
	out, err := Normalize(digitLike(40, 40))
	require.NoError(t, err)

	var black, white int
	for _, v := range out.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("non-binary pixel value %d", v)
		}
	}
	assert.NotZero(t, black, "the bar should survive thresholding")
	assert.NotZero(t, white)
}

func TestNormalizeDeterministic(t *testing.T) {
	in := digitLike(54, 54)
	a, err := Normalize(in)
	require.NoError(t, err)
	b, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestNormalizeOffsetBounds(t *testing.T) {
	full := digitLike(60, 60)
	sub := full.SubImage(image.Rect(10, 10, 40, 30))
	out, err := Normalize(sub)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 40), out.Bounds())
}

func TestNormalizeInvalidImage(t *testing.T) {
	_, err := Normalize(nil)
	assert.True(t, errors.Is(err, ErrInvalidImage))

	_, err = Normalize(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	assert.True(t, errors.Is(err, ErrInvalidImage))
}
