package screen

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
	"github.com/rs/zerolog/log"
)

// ErrCapture is returned when the display cannot be read.
var ErrCapture = errors.New("screen capture failed")

// Capturer grabs uncached snapshots of screen regions.
type Capturer struct {
	grab     func(image.Rectangle) (*image.RGBA, error)
	debugDir string
}

// NewCapturer returns a Capturer reading the live display. When debugDir is
// non-empty, CaptureAs also writes each snapshot there for inspection.
func NewCapturer(debugDir string) *Capturer {
	return &Capturer{grab: screenshot.CaptureRect, debugDir: debugDir}
}

// Capture returns exactly the pixels inside r.
func (c *Capturer) Capture(r Region) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	img, err := c.grab(r.Rect())
	if err != nil {
		return nil, fmt.Errorf("%w: region %s: %v", ErrCapture, r, err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: region %s: no pixels returned", ErrCapture, r)
	}
	return img, nil
}

// CaptureAs is Capture plus a diagnostic copy saved under name. Failing to
// save is logged and otherwise ignored.
func (c *Capturer) CaptureAs(r Region, name string) (image.Image, error) {
	img, err := c.Capture(r)
	if err != nil {
		return nil, err
	}
	c.save(img, name)
	return img, nil
}

// SaveDiagnostic writes img under name in the debug directory, if enabled.
func (c *Capturer) SaveDiagnostic(img image.Image, name string) {
	c.save(img, name)
}

func (c *Capturer) save(img image.Image, name string) {
	if c.debugDir == "" || img == nil {
		return
	}
	if err := os.MkdirAll(c.debugDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", c.debugDir).Msg("create debug dir")
		return
	}
	path := filepath.Join(c.debugDir, name)
	if err := imaging.Save(img, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("save diagnostic image")
		return
	}
	log.Debug().Str("path", path).Msg("diagnostic image saved")
}
