package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs Tesseract through gosseract. A client is not safe for
// concurrent use; give each goroutine its own engine.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine configures a client for a single language and a single
// upright text line (no orientation/script detection). An empty whitelist
// leaves Tesseract's character set untouched.
func NewTesseractEngine(lang, whitelist string) (*TesseractEngine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract language %q: %w", lang, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract page seg mode: %w", err)
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("tesseract whitelist: %w", err)
		}
	}
	return &TesseractEngine{client: client}, nil
}

// Detect returns word-level fragments in reading order.
func (e *TesseractEngine) Detect(img image.Image) ([]Detection, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr error: %w", err)
	}
	out := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, Detection{
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence / 100,
		})
	}
	return out, nil
}

// Close releases the underlying Tesseract handle.
func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
