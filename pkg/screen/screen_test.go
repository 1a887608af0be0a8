package screen

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGrab returns a blank image covering the requested rectangle, the way
// screenshot.CaptureRect does.
func fakeGrab(r image.Rectangle) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

func TestCaptureDimensions(t *testing.T) {
	c := &Capturer{grab: fakeGrab}
	regions := []Region{
		{1344, 273, 1398, 327},
		{1476, 270, 1550, 324},
		{0, 0, 1, 1},
		{10, 20, 11, 400},
	}
	for _, r := range regions {
		t.Run(r.String(), func(t *testing.T) {
			img, err := c.Capture(r)
			require.NoError(t, err)
			assert.Equal(t, r.Right-r.Left, img.Bounds().Dx())
			assert.Equal(t, r.Bottom-r.Top, img.Bounds().Dy())
		})
	}
}

func TestCaptureEmptyRegion(t *testing.T) {
	called := false
	c := &Capturer{grab: func(r image.Rectangle) (*image.RGBA, error) {
		called = true
		return fakeGrab(r)
	}}
	_, err := c.Capture(Region{10, 10, 10, 20})
	assert.True(t, errors.Is(err, ErrEmptyRegion))
	assert.False(t, called, "display must not be touched for an empty region")
}

func TestCaptureErrorWrapped(t *testing.T) {
	c := &Capturer{grab: func(image.Rectangle) (*image.RGBA, error) {
		return nil, fmt.Errorf("no display")
	}}
	_, err := c.Capture(Region{0, 0, 5, 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapture))
}

func TestCaptureAsSavesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	c := &Capturer{grab: fakeGrab, debugDir: dir}

	_, err := c.CaptureAs(Region{0, 0, 4, 3}, "screenshot1.png")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "screenshot1.png"))
	assert.NoError(t, err)
}

func TestCaptureAsWithoutDebugDir(t *testing.T) {
	c := &Capturer{grab: fakeGrab}
	img, err := c.CaptureAs(Region{0, 0, 4, 3}, "screenshot1.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    Region
		wantErr bool
	}{
		{"1344,273,1398,327", Region{1344, 273, 1398, 327}, false},
		{" (1, 2, 3, 4) ", Region{1, 2, 3, 4}, false},
		{"1,2,3", Region{}, true},
		{"1,2,x,4", Region{}, true},
		{"5,5,5,9", Region{}, true},
		{"5,9,8,2", Region{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionStringRoundTrip(t *testing.T) {
	r := Region{1202, 510, 1626, 903}
	got, err := ParseRegion(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, 424, r.Width())
	assert.Equal(t, 393, r.Height())
}
