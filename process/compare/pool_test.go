package compare

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindbot/pkg/ocr"
)

// barrierReader returns the image width as the number, but only after every
// reader sharing the barrier has started reading.
type barrierReader struct {
	barrier *sync.WaitGroup
	closed  *atomic.Int32
	panics  bool
}

func (b *barrierReader) Read(img image.Image) (ocr.Reading, error) {
	if b.panics {
		panic("cgo crash")
	}
	if b.barrier != nil {
		b.barrier.Done()
		b.barrier.Wait()
	}
	return ocr.Reading{Value: img.Bounds().Dx(), OK: true}, nil
}

func (b *barrierReader) Close() error {
	if b.closed != nil {
		b.closed.Add(1)
	}
	return nil
}

func img(w int) image.Image { return image.NewGray(image.Rect(0, 0, w, 1)) }

func TestPoolReadsConcurrentlyInOrder(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	var closed atomic.Int32
	p := NewPool([]NumberReader{
		&barrierReader{barrier: &barrier, closed: &closed},
		&barrierReader{barrier: &barrier, closed: &closed},
	})

	done := make(chan []Result, 1)
	go func() { done <- p.ReadAll(context.Background(), img(8), img(2)) }()

	select {
	case res := <-done:
		require.Len(t, res, 2)
		assert.NoError(t, res[0].Err)
		assert.Equal(t, 8, res[0].Reading.Value)
		assert.Equal(t, 2, res[1].Reading.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("reads were serialized: both must be in flight together")
	}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")
	assert.Equal(t, int32(2), closed.Load())
}

func TestPoolRecoversReaderPanic(t *testing.T) {
	p := NewPool([]NumberReader{&barrierReader{panics: true}, &barrierReader{panics: true}})
	defer p.Close()

	res := p.ReadAll(context.Background(), img(3))
	require.Len(t, res, 1)
	assert.Error(t, res[0].Err)

	// worker survives the panic
	res = p.ReadAll(context.Background(), img(3))
	assert.Error(t, res[0].Err)
}

type blockingReader struct{ release chan struct{} }

func (b *blockingReader) Read(image.Image) (ocr.Reading, error) {
	<-b.release
	return ocr.Reading{}, nil
}

func (b *blockingReader) Close() error { return nil }

func TestPoolReadAllHonorsContext(t *testing.T) {
	br := &blockingReader{release: make(chan struct{})}
	p := NewPool([]NumberReader{br, br})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := p.ReadAll(ctx, img(1), img(2))

	require.Len(t, res, 2)
	for _, r := range res {
		assert.True(t, errors.Is(r.Err, context.DeadlineExceeded))
	}
	close(br.release)
	require.NoError(t, p.Close())
}
