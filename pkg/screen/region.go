// Package screen is the display boundary: it reads pixels from fixed screen
// regions and writes pointer events back to the same display.
package screen

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrEmptyRegion is returned for a region with no area.
var ErrEmptyRegion = errors.New("empty screen region")

// Region is a rectangle in screen pixel coordinates. Right and Bottom are exclusive.
type Region struct {
	Left, Top, Right, Bottom int
}

// Width returns Right-Left.
func (r Region) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Region) Height() int { return r.Bottom - r.Top }

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Validate reports ErrEmptyRegion unless Right > Left and Bottom > Top.
func (r Region) Validate() error {
	if r.Right <= r.Left || r.Bottom <= r.Top {
		return fmt.Errorf("%w: %s", ErrEmptyRegion, r)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// ParseRegion parses "left,top,right,bottom". Spaces and surrounding
// parentheses are tolerated so String output round-trips.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: want left,top,right,bottom", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	r := Region{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}
