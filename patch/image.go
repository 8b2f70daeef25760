package patch

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

var black color.Color = color.NRGBA{0, 0, 0, 0xff}

// IsChapterLayout reports whether a card with the given type line uses a
// wide multi-panel frame, whose art must be letterboxed instead of cropped.
func IsChapterLayout(typeLine string) bool {
	return strings.Contains(typeLine, "Saga")
}

// DecodeImage reads an image file.
func DecodeImage(fs afero.Fs, path string) (img image.Image, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err = imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	return img, nil
}

// Letterbox scales src to fit inside a width×height frame while keeping its
// aspect ratio, and centers it on a black canvas of exactly that size.
func Letterbox(src image.Image, width, height int) *image.NRGBA {
	size := src.Bounds().Size()

	scale := math.Min(
		float64(width)/float64(size.X),
		float64(height)/float64(size.Y),
	)
	scaledWidth := clamp(int(math.Round(float64(size.X)*scale)), 1, width)
	scaledHeight := clamp(int(math.Round(float64(size.Y)*scale)), 1, height)

	scaled := imaging.Resize(src, scaledWidth, scaledHeight, imaging.Lanczos)

	background := imaging.New(width, height, black)

	return imaging.Paste(
		background,
		scaled,
		image.Pt((width-scaledWidth)/2, (height-scaledHeight)/2),
	)
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
