// Package vision implements rotation estimation, localization and marking
// on top of OpenCV.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// imageToMat converts a Go image.Image to a BGR gocv.Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image %v", bounds)
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// OpenCV uses BGR format
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// matToImage converts a BGR or single channel gocv.Mat to an *image.RGBA.
func matToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	h := mat.Rows()
	w := mat.Cols()
	channels := mat.Channels()
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		rowOffset := y * img.Stride
		for x := 0; x < w; x++ {
			pixOffset := rowOffset + x*4
			if channels == 1 {
				v := mat.GetUCharAt(y, x)
				img.Pix[pixOffset+0] = v
				img.Pix[pixOffset+1] = v
				img.Pix[pixOffset+2] = v
			} else {
				img.Pix[pixOffset+0] = mat.GetUCharAt(y, x*3+2) // R
				img.Pix[pixOffset+1] = mat.GetUCharAt(y, x*3+1) // G
				img.Pix[pixOffset+2] = mat.GetUCharAt(y, x*3+0) // B
			}
			img.Pix[pixOffset+3] = 255
		}
	}
	return img, nil
}

// grayMat converts img to a single channel 8-bit Mat.
func grayMat(img image.Image) (gocv.Mat, error) {
	m, err := imageToMat(img)
	if err != nil {
		return m, err
	}
	defer m.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	return gray, nil
}
