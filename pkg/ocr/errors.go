package ocr

import "errors"

// ErrInvalidImage is returned when an image is nil or has no pixels.
var ErrInvalidImage = errors.New("invalid image")
