package compare

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog/log"

	"mindbot/pkg/ocr"
)

// NumberReader normalizes and recognizes one capture. Implementations need
// not be goroutine-safe; the pool gives each worker its own.
type NumberReader interface {
	Read(img image.Image) (ocr.Reading, error)
	Close() error
}

// Result is one pool job's outcome.
type Result struct {
	Reading ocr.Reading
	Err     error
}

type job struct {
	img image.Image
	out chan<- Result
}

// Pool runs reads on a fixed set of workers, one NumberReader each.
type Pool struct {
	jobs    chan job
	readers []NumberReader
	wg      sync.WaitGroup
	once    sync.Once
}

// NewPool starts one worker per reader.
func NewPool(readers []NumberReader) *Pool {
	p := &Pool{jobs: make(chan job, len(readers)), readers: readers}
	for i, r := range readers {
		p.wg.Add(1)
		go p.work(i, r)
	}
	return p
}

// NewTesseractPool builds a pool of n workers, each with its own Tesseract client.
func NewTesseractPool(n int, lang, whitelist string, minConf float64) (*Pool, error) {
	readers := make([]NumberReader, 0, n)
	for i := 0; i < n; i++ {
		eng, err := ocr.NewTesseractEngine(lang, whitelist)
		if err != nil {
			for _, r := range readers {
				_ = r.Close()
			}
			return nil, fmt.Errorf("ocr worker %d: %w", i, err)
		}
		rec := ocr.NewRecognizer(eng)
		rec.MinConfidence = minConf
		readers = append(readers, rec)
	}
	return NewPool(readers), nil
}

func (p *Pool) work(id int, r NumberReader) {
	defer p.wg.Done()
	for j := range p.jobs {
		j.out <- p.read(id, r, j.img)
	}
}

func (p *Pool) read(id int, r NumberReader, img image.Image) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Int("worker", id).Interface("panic", rec).Msg("reader panicked")
			res = Result{Err: fmt.Errorf("worker %d panicked: %v", id, rec)}
		}
	}()
	reading, err := r.Read(img)
	return Result{Reading: reading, Err: err}
}

// ReadAll reads every image concurrently and returns results in input order.
// If ctx ends first, the outstanding results carry ctx.Err().
func (p *Pool) ReadAll(ctx context.Context, imgs ...image.Image) []Result {
	outs := make([]chan Result, 0, len(imgs))
submit:
	for _, img := range imgs {
		out := make(chan Result, 1)
		select {
		case p.jobs <- job{img: img, out: out}:
			outs = append(outs, out)
		case <-ctx.Done():
			break submit
		}
	}
	results := make([]Result, len(imgs))
	for i := range results {
		if i >= len(outs) {
			results[i] = Result{Err: ctx.Err()}
			continue
		}
		select {
		case results[i] = <-outs[i]:
		case <-ctx.Done():
			results[i] = Result{Err: ctx.Err()}
		}
	}
	return results
}

// Close stops the workers and closes their readers.
func (p *Pool) Close() error {
	var errs []error
	p.once.Do(func() {
		close(p.jobs)
		p.wg.Wait()
		for _, r := range p.readers {
			if err := r.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
