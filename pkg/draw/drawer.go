// Package draw renders comparison symbols as freehand pointer gestures.
package draw

import (
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mindbot/pkg/screen"
)

// Symbol is a drawable comparison sign.
type Symbol int

const (
	None Symbol = iota
	GreaterThan
	LessThan
)

func (s Symbol) String() string {
	switch s {
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	default:
		return "none"
	}
}

// Default gesture timing.
const (
	DefaultMoveDuration = 50 * time.Millisecond
	DefaultDrawDelay    = 20 * time.Millisecond
	DefaultSettleDelay  = 200 * time.Millisecond

	// anchorOffset places strokes inside the write region, away from its border.
	anchorOffset = 150
	// glideStep is the pointer update period while gliding between waypoints.
	glideStep = 10 * time.Millisecond
)

// Pointer is the primary pointing device.
type Pointer interface {
	Location() image.Point
	Move(p image.Point)
	Press() error
	Release() error
}

// Timing controls gesture pacing.
type Timing struct {
	MoveDuration time.Duration // glide time to each waypoint
	DrawDelay    time.Duration // pause after reaching a waypoint with the button held
	SettleDelay  time.Duration // pause after release so the target registers the stroke
}

// DefaultTiming returns the stock gesture pacing.
func DefaultTiming() Timing {
	return Timing{
		MoveDuration: DefaultMoveDuration,
		DrawDelay:    DefaultDrawDelay,
		SettleDelay:  DefaultSettleDelay,
	}
}

// Drawer draws symbols into a fixed write region. Gestures are queued, never
// overlapped: a Draw started while another is in progress waits for it to
// finish, so a burst of answers is drawn late rather than interleaved.
type Drawer struct {
	region  screen.Region
	pointer Pointer
	timing  Timing
	sleep   func(time.Duration)

	mu sync.Mutex
}

// New returns a Drawer targeting region.
func New(region screen.Region, p Pointer, t Timing) *Drawer {
	return &Drawer{region: region, pointer: p, timing: t, sleep: time.Sleep}
}

// Waypoints returns the stroke for sym, or nil when sym is not drawable.
func (d *Drawer) Waypoints(sym Symbol) []image.Point {
	x, y := d.region.Left+anchorOffset, d.region.Top+anchorOffset
	switch sym {
	case GreaterThan:
		return []image.Point{{x, y}, {x + 50, y + 50}, {x, y + 100}}
	case LessThan:
		return []image.Point{{x + 50, y}, {x - 10, y + 50}, {x + 50, y + 100}, {x - 10, y + 75}}
	default:
		return nil
	}
}

// Draw performs the gesture for sym and returns once the settle pause is
// over. Symbols other than GreaterThan and LessThan are ignored.
func (d *Drawer) Draw(sym Symbol) {
	pts := d.Waypoints(sym)
	if len(pts) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.glide(pts[0])
	if err := d.pointer.Press(); err != nil {
		log.Error().Err(err).Str("symbol", sym.String()).Msg("pointer press failed")
		return
	}
	for _, p := range pts[1:] {
		d.glide(p)
		d.sleep(d.timing.DrawDelay)
	}
	if err := d.pointer.Release(); err != nil {
		log.Error().Err(err).Str("symbol", sym.String()).Msg("pointer release failed")
	}
	d.sleep(d.timing.SettleDelay)
	log.Debug().Str("symbol", sym.String()).Msg("symbol drawn")
}

// glide moves the pointer to dst in straight-line steps spread over MoveDuration.
func (d *Drawer) glide(dst image.Point) {
	steps := int(d.timing.MoveDuration / glideStep)
	if steps <= 1 {
		d.pointer.Move(dst)
		return
	}
	src := d.pointer.Location()
	for i := 1; i <= steps; i++ {
		p := image.Point{
			X: src.X + (dst.X-src.X)*i/steps,
			Y: src.Y + (dst.Y-src.Y)*i/steps,
		}
		d.pointer.Move(p)
		if i < steps {
			d.sleep(glideStep)
		}
	}
}
