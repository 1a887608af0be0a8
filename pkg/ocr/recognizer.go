package ocr

import (
	"image"

	"github.com/rs/zerolog/log"
)

// Engine is a black-box text detector.
type Engine interface {
	Detect(img image.Image) ([]Detection, error)
	Close() error
}

// Reading is the outcome of reading one region.
type Reading struct {
	Value      int
	OK         bool
	Normalized *image.Gray
}

// Recognizer extracts a non-negative integer from an image. It is bound to
// one Engine and shares its concurrency limits.
type Recognizer struct {
	engine        Engine
	MinConfidence float64
}

// NewRecognizer wraps e with the default confidence cut-off.
func NewRecognizer(e Engine) *Recognizer {
	return &Recognizer{engine: e, MinConfidence: MinConfidence}
}

// Recognize runs the engine on an already normalized image. Engine errors and
// panics count as "no number" and are only logged.
func (r *Recognizer) Recognize(img image.Image) (n int, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("ocr engine panicked")
			n, ok = 0, false
		}
	}()
	ds, err := r.engine.Detect(img)
	if err != nil {
		log.Debug().Err(err).Msg("ocr detect failed")
		return 0, false
	}
	n, ok = NumberFromDetections(ds, r.MinConfidence)
	log.Debug().Int("fragments", len(ds)).Str("digits", Digits(ds, r.MinConfidence)).Bool("ok", ok).Msg("ocr result")
	return n, ok
}

// Read normalizes a raw capture and recognizes it. Only ErrInvalidImage is
// returned as an error; a missing number is a valid Reading with OK false.
func (r *Recognizer) Read(img image.Image) (Reading, error) {
	norm, err := Normalize(img)
	if err != nil {
		return Reading{}, err
	}
	n, ok := r.Recognize(norm)
	return Reading{Value: n, OK: ok, Normalized: norm}, nil
}

// Close closes the engine.
func (r *Recognizer) Close() error {
	return r.engine.Close()
}
