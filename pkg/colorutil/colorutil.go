// Package colorutil provides shared color utilities: overlay colors, the
// averaging grayscale used for correlation scoring and the heat palette used
// to render correlation maps.
package colorutil

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// AverageGray returns the rounded mean of the 8-bit R, G and B channels of c.
func AverageGray(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	sum := float64(r>>8) + float64(g>>8) + float64(b>>8)
	return uint8(math.Round(sum / 3))
}

// magmaStops approximates matplotlib's "magma" colormap.
var magmaStops = []string{
	"#000004", "#1c1044", "#4f127b", "#812581",
	"#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf",
}

// Palette maps a value in [0,1] onto a colormap.
type Palette struct {
	stops []colorful.Color
}

// Magma returns the magma-like palette.
func Magma() Palette {
	stops := make([]colorful.Color, 0, len(magmaStops))
	for _, hex := range magmaStops {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		stops = append(stops, c)
	}
	return Palette{stops: stops}
}

// At returns the palette color for t. t is clamped to [0,1]; NaN maps to 0.
func (p Palette) At(t float64) color.RGBA {
	if len(p.stops) == 0 {
		g := uint8(clamp01(t) * 255)
		return color.RGBA{R: g, G: g, B: g, A: 255}
	}
	t = clamp01(t)
	if len(p.stops) == 1 {
		return toRGBA(p.stops[0])
	}

	pos := t * float64(len(p.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(p.stops)-1 {
		return toRGBA(p.stops[len(p.stops)-1])
	}
	frac := pos - float64(i)
	return toRGBA(p.stops[i].BlendLab(p.stops[i+1], frac))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp01(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
