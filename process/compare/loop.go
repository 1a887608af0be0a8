// Package compare runs the capture → recognize → compare → draw loop.
package compare

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mindbot/pkg/draw"
	"mindbot/pkg/screen"
)

// Diagnostic file names, overwritten every iteration.
const (
	Capture1Name  = "screenshot1.png"
	Capture2Name  = "screenshot2.png"
	ProcessedName = "processed_image.png"
)

// Capturer snapshots screen regions.
type Capturer interface {
	CaptureAs(r screen.Region, name string) (image.Image, error)
	SaveDiagnostic(img image.Image, name string)
}

// Reader recognizes numbers in several captures at once.
type Reader interface {
	ReadAll(ctx context.Context, imgs ...image.Image) []Result
}

// Drawer renders a symbol; it blocks until the gesture is done.
type Drawer interface {
	Draw(sym draw.Symbol)
}

// Counter counts completed actions.
type Counter interface {
	Increment() (int, error)
	Count() int
}

// Settings are the loop's fixed parameters.
type Settings struct {
	Region1     screen.Region
	Region2     screen.Region
	Interval    time.Duration // pause at the end of every iteration
	RepeatDelay time.Duration // wait before re-drawing an already answered pair
}

// State names the phase of the current iteration.
type State int

const (
	Idle State = iota
	Capturing
	Recognizing
	Comparing
	Drawing
	Skipping
	Sleeping
)

var stateNames = [...]string{"idle", "capturing", "recognizing", "comparing", "drawing", "skipping", "sleeping"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Loop owns all mutable orchestration state. Step and Run must be called
// from a single goroutine; only draws run elsewhere.
type Loop struct {
	settings Settings
	capturer Capturer
	reader   Reader
	drawer   Drawer
	counter  Counter

	seen  map[Pair]struct{}
	state State
	draws sync.WaitGroup
	sleep func(ctx context.Context, d time.Duration) error
}

// New wires a loop. Nothing runs until Run or Step is called.
func New(s Settings, c Capturer, r Reader, d Drawer, n Counter) *Loop {
	return &Loop{
		settings: s,
		capturer: c,
		reader:   r,
		drawer:   d,
		counter:  n,
		seen:     make(map[Pair]struct{}),
		sleep:    sleepCtx,
	}
}

// Run iterates until ctx is cancelled, then waits for in-flight draws.
// Iteration failures are logged and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	log.Info().
		Stringer("region1", l.settings.Region1).
		Stringer("region2", l.settings.Region2).
		Dur("interval", l.settings.Interval).
		Int("count", l.counter.Count()).
		Msg("comparison loop started")
	for {
		if err := l.Step(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("iteration failed")
		}
		l.setState(Sleeping)
		if err := l.sleep(ctx, l.settings.Interval); err != nil {
			break
		}
	}
	l.Wait()
	log.Info().Int("count", l.counter.Count()).Int("seen", len(l.seen)).Msg("comparison loop stopped")
	return nil
}

// Step runs one iteration without the trailing sleep. Panics are recovered
// and returned as errors.
func (l *Loop) Step(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("iteration panicked: %v", p)
		}
	}()

	l.setState(Capturing)
	img1, err := l.capturer.CaptureAs(l.settings.Region1, Capture1Name)
	if err != nil {
		return fmt.Errorf("region1: %w", err)
	}
	img2, err := l.capturer.CaptureAs(l.settings.Region2, Capture2Name)
	if err != nil {
		return fmt.Errorf("region2: %w", err)
	}

	l.setState(Recognizing)
	res := l.reader.ReadAll(ctx, img1, img2)
	if len(res) != 2 {
		return fmt.Errorf("reader returned %d results for 2 captures", len(res))
	}
	if err := errors.Join(res[0].Err, res[1].Err); err != nil {
		return err
	}
	for _, r := range res {
		if r.Reading.Normalized != nil {
			l.capturer.SaveDiagnostic(r.Reading.Normalized, ProcessedName)
		}
	}
	r1, r2 := res[0].Reading, res[1].Reading
	if !r1.OK || !r2.OK {
		l.setState(Skipping)
		log.Info().Bool("ok1", r1.OK).Bool("ok2", r2.OK).Msg("numbers not recognized")
		return nil
	}

	l.setState(Comparing)
	return l.act(ctx, r1.Value, r2.Value)
}

func (l *Loop) act(ctx context.Context, n1, n2 int) error {
	outcome := Compare(n1, n2)
	log.Info().Int("n1", n1).Int("n2", n2).Stringer("outcome", outcome).Msg("numbers compared")
	if outcome == Equal {
		l.setState(Skipping)
		return nil
	}

	pair := Pair{A: n1, B: n2}
	if _, seen := l.seen[pair]; seen {
		// still on screen: redraw the same answer after a short wait
		if err := l.sleep(ctx, l.settings.RepeatDelay); err != nil {
			return err
		}
		l.setState(Drawing)
		l.dispatch(outcome.Symbol())
		log.Debug().Stringer("pair", pair).Msg("repeat pair redrawn")
		return nil
	}

	l.setState(Drawing)
	l.dispatch(outcome.Symbol())
	count, err := l.counter.Increment()
	if err != nil {
		log.Error().Err(err).Int("count", count).Msg("counter not persisted")
	}
	l.seen[pair] = struct{}{}
	log.Info().Stringer("pair", pair).Int("count", count).Msg("answer drawn")
	return nil
}

// dispatch starts a detached draw. Run waits for it on shutdown.
func (l *Loop) dispatch(sym draw.Symbol) {
	l.draws.Add(1)
	go func() {
		defer l.draws.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Stringer("symbol", sym).Msg("draw panicked")
			}
		}()
		l.drawer.Draw(sym)
	}()
}

// Wait blocks until every dispatched draw has finished.
func (l *Loop) Wait() { l.draws.Wait() }

// Seen reports whether pair has already been answered.
func (l *Loop) Seen(p Pair) bool {
	_, ok := l.seen[p]
	return ok
}

// SeenCount returns the number of answered pairs.
func (l *Loop) SeenCount() int { return len(l.seen) }

// State returns the phase of the last or current iteration.
func (l *Loop) State() State { return l.state }

func (l *Loop) setState(s State) {
	if s != l.state {
		log.Trace().Stringer("from", l.state).Stringer("to", s).Msg("state")
	}
	l.state = s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
