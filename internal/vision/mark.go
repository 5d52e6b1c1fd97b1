package vision

import (
	"fmt"
	"image"
	"image/color"

	"correlation-map/pkg/geometry"

	"gocv.io/x/gocv"
)

// Mark returns a copy of img with the outline of region drawn on it.
func (p *Processor) Mark(img image.Image, region geometry.Region) (image.Image, error) {
	m, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("mark: %w", err)
	}
	defer m.Close()

	gocv.Rectangle(&m, region.Rect(), bgr(p.MarkColor), p.Thickness)
	return matToImage(m)
}

// bgr swaps the red and blue channels for drawing on BGR mats.
func bgr(c color.RGBA) color.RGBA {
	c.R, c.B = c.B, c.R
	return c
}
