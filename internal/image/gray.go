package image

import (
	"errors"
	"fmt"
	"image"

	"correlation-map/pkg/colorutil"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Gray converts img to a grayscale matrix indexed [row][column]. Each value is
// the rounded mean of the 8-bit R, G and B channels.
func Gray(img image.Image) (*mat.Dense, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("grayscale %v: %w", b, ErrEmptyImage)
	}

	data := make([]float64, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			data[i] = float64(colorutil.AverageGray(img.At(x, y)))
			i++
		}
	}
	return mat.NewDense(b.Dy(), b.Dx(), data), nil
}

// Crop copies the part of img inside r. r is given relative to the image
// origin and is clipped to the image bounds; an empty result is an error.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	r = r.Canon().Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("crop %v outside image bounds %v: %w", r, b, ErrEmptyImage)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}
