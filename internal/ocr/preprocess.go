package ocr

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// PreprocessConfig controls the deterministic image cleanup applied
// before recognition.
type PreprocessConfig struct {
	MaxDimension int  // longest side in pixels; 0 disables resizing
	Grayscale    bool // convert to 8-bit gray
	Threshold    bool // binarize; implies Grayscale
	Level        uint8
}

// DefaultPreprocessConfig returns preprocessing that leaves the image
// untouched apart from downscaling very large photos.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		MaxDimension: 3000,
		Level:        128,
	}
}

// Preprocess applies config to img and returns the result. img itself
// is never modified.
func Preprocess(img image.Image, config PreprocessConfig) image.Image {
	out := img
	if config.MaxDimension > 0 {
		out = downscale(out, config.MaxDimension)
	}
	if config.Grayscale || config.Threshold {
		out = grayscale(out)
	}
	if config.Threshold {
		out = threshold(out.(*image.Gray), config.Level)
	}
	return out
}

func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return img
	}

	newWidth, newHeight := maxDim, maxDim
	if width > height {
		newHeight = height * maxDim / width
	} else {
		newWidth = width * maxDim / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

func grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// threshold maps pixels above level to white and the rest to black.
func threshold(gray *image.Gray, level uint8) *image.Gray {
	out := image.NewGray(gray.Bounds())
	for i, p := range gray.Pix {
		if p > level {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}
