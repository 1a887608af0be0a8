package screen

import (
	"image"

	"github.com/go-vgo/robotgo"
)

// RobotPointer drives the system pointer through robotgo.
type RobotPointer struct{}

// NewRobotPointer disables robotgo's built-in per-call mouse delay; callers
// pace gestures themselves.
func NewRobotPointer() RobotPointer {
	robotgo.MouseSleep = 0
	return RobotPointer{}
}

// Location returns the current pointer position.
func (RobotPointer) Location() image.Point {
	x, y := robotgo.Location()
	return image.Pt(x, y)
}

// Move warps the pointer to p.
func (RobotPointer) Move(p image.Point) {
	robotgo.Move(p.X, p.Y)
}

// Press holds the primary button down.
func (RobotPointer) Press() error {
	return robotgo.Toggle("left")
}

// Release lets the primary button go.
func (RobotPointer) Release() error {
	return robotgo.Toggle("left", "up")
}
