package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// MarkRegions returns a copy of img with the outline of every rectangle
// drawn on it. Rectangles are relative to the image origin.
func MarkRegions(img image.Image, rects []image.Rectangle, c color.Color, lineWidth float64) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetColor(c)
	dc.SetLineWidth(lineWidth)
	for _, r := range rects {
		r = r.Canon()
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
	}
	return dc.Image()
}
