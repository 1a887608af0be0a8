package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Normalization parameters tuned for small on-screen digits.
const (
	UpscaleFactor  = 2
	MedianKernel   = 3
	ThresholdBlock = 11
	ThresholdBias  = 2
	CloseKernel    = 2
)

// Normalize turns a raw capture into a black/white image suited to digit OCR:
// 2x Lanczos upscale, grayscale, 3px median blur, Gaussian adaptive threshold
// (block 11, bias 2) and a 2x2 morphological close. Output is twice the input
// size and holds only 0 and 255.
func Normalize(img image.Image) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}
	b := img.Bounds()
	up := imaging.Resize(img, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor, imaging.Lanczos)
	gray := toGray(imaging.Grayscale(up))

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(src, &blurred, MedianKernel)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.AdaptiveThreshold(blurred, &bin, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, ThresholdBlock, ThresholdBias)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(CloseKernel, CloseKernel))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(bin, &closed, gocv.MorphClose, kernel)

	out, err := closed.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected mat image type %T", ErrInvalidImage, out)
	}
	return g, nil
}

// toGray packs an imaging grayscale result (R=G=B) into a single channel.
func toGray(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}
