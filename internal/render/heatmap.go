// Package render draws correlation maps and marks regions on images.
package render

import (
	"errors"
	"image"
	"math"

	"correlation-map/internal/correlation"
	"correlation-map/pkg/colorutil"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// TitleHeight is the height of the title strip above a rendered map.
const TitleHeight = 24

// HeatmapOptions controls Heatmap.
type HeatmapOptions struct {
	CellSize int    // Pixels per map cell
	Title    string // Drawn above the map when not empty
	Palette  colorutil.Palette
}

// DefaultHeatmapOptions returns 8 pixel cells with the magma palette.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		CellSize: 8,
		Title:    "Correlation map",
		Palette:  colorutil.Magma(),
	}
}

// Heatmap renders every map cell as a block colored by its score scaled to
// the map's value range.
func Heatmap(m *correlation.Map, opts HeatmapOptions) (image.Image, error) {
	if m == nil {
		return nil, errors.New("render: nil correlation map")
	}
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultHeatmapOptions().CellSize
	}

	rows, cols := m.Dims()
	norm := normalize(m)
	cells := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells.SetRGBA(c, r, opts.Palette.At(norm[r*cols+c]))
		}
	}

	w, h := cols*opts.CellSize, rows*opts.CellSize
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), cells, cells.Bounds(), draw.Src, nil)

	if opts.Title == "" {
		return scaled, nil
	}

	dc := gg.NewContext(w, h+TitleHeight)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(scaled, 0, TitleHeight)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(opts.Title, float64(w)/2, TitleHeight/2, 0.5, 0.5)
	return dc.Image(), nil
}

// normalize maps the scores onto [0,1]. A flat map yields zeros.
func normalize(m *correlation.Map) []float64 {
	scores := m.Scores()
	st := m.Stats()
	span := st.Max - st.Min
	for i, s := range scores {
		if span == 0 || math.IsNaN(span) {
			scores[i] = 0
			continue
		}
		scores[i] = (s - st.Min) / span
	}
	return scores
}

// Save writes img as a PNG file.
func Save(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
