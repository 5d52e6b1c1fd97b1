package render

import (
	"errors"
	"image"
	"math"

	"correlation-map/internal/correlation"
	"correlation-map/pkg/colorutil"

	"github.com/fogleman/gg"
)

// SurfaceOptions controls Surface.
type SurfaceOptions struct {
	Width, Height int
	Title         string
	Palette       colorutil.Palette

	// Relief is the height of a full-range score relative to the grid depth.
	Relief float64
}

// DefaultSurfaceOptions returns an 800x600 view with the magma palette.
func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Width:   800,
		Height:  600,
		Title:   "Correlation map",
		Palette: colorutil.Magma(),
		Relief:  0.35,
	}
}

type point struct{ x, y float64 }

// Surface renders the map as an isometric wireframe: cell (r, c) is a grid
// vertex raised by its normalized score, edges are colored by height.
func Surface(m *correlation.Map, opts SurfaceOptions) (image.Image, error) {
	if m == nil {
		return nil, errors.New("render: nil correlation map")
	}
	def := DefaultSurfaceOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.Relief <= 0 {
		opts.Relief = def.Relief
	}

	rows, cols := m.Dims()
	z := normalize(m)
	relief := opts.Relief * float64(max(rows, cols))

	cos30, sin30 := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
	proj := make([]point, rows*cols)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			p := point{
				x: float64(c-r) * cos30,
				y: float64(c+r)*sin30 - z[i]*relief,
			}
			proj[i] = p
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}

	top := 0.0
	if opts.Title != "" {
		top = TitleHeight
	}
	margin := 16.0
	availW := float64(opts.Width) - 2*margin
	availH := float64(opts.Height) - 2*margin - top
	scale := 1.0
	if spanX, spanY := maxX-minX, maxY-minY; spanX > 0 || spanY > 0 {
		scale = math.Min(availW/math.Max(spanX, 1e-9), availH/math.Max(spanY, 1e-9))
	}
	screen := func(p point) (float64, float64) {
		return margin + (p.x-minX)*scale, top + margin + (p.y-minY)*scale
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetLineWidth(1)

	edge := func(a, b int) {
		x1, y1 := screen(proj[a])
		x2, y2 := screen(proj[b])
		dc.SetColor(opts.Palette.At((z[a] + z[b]) / 2))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if c+1 < cols {
				edge(i, i+1)
			}
			if r+1 < rows {
				edge(i, i+cols)
			}
		}
	}
	if rows*cols == 1 {
		x, y := screen(proj[0])
		dc.SetColor(opts.Palette.At(z[0]))
		dc.DrawPoint(x, y, 3)
		dc.Fill()
	}

	if opts.Title != "" {
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(opts.Title, float64(opts.Width)/2, TitleHeight/2, 0.5, 0.5)
	}
	return dc.Image(), nil
}
