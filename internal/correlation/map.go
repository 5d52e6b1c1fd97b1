// Package correlation builds block-wise correlation maps from two grayscale
// images and analyzes them.
package correlation

import (
	"fmt"

	"correlation-map/internal/artifact"
	"correlation-map/internal/metric"
)

// Map is an immutable grid of similarity scores, one per tile pair.
type Map struct {
	kind     metric.Kind
	tileSize int
	rows     int
	cols     int
	height   int // Height of the compared area in pixels
	width    int // Width of the compared area in pixels
	scores   []float64
}

// Tag returns artifact.TagCorrelationMap.
func (m *Map) Tag() artifact.Tag {
	return artifact.TagCorrelationMap
}

// Dims returns the number of rows and columns of the map.
func (m *Map) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// Area returns the pixel size of the image the map shape was taken from.
func (m *Map) Area() (height, width int) {
	return m.height, m.width
}

// At returns the score of the tile pair at row r, column c.
func (m *Map) At(r, c int) float64 {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		panic(fmt.Sprintf("correlation: index (%d,%d) out of range %dx%d", r, c, m.rows, m.cols))
	}
	return m.scores[r*m.cols+c]
}

// Scores returns a row-major copy of all scores.
func (m *Map) Scores() []float64 {
	out := make([]float64, len(m.scores))
	copy(out, m.scores)
	return out
}

// Rows returns a copy of the scores as a slice of rows.
func (m *Map) Rows() [][]float64 {
	out := make([][]float64, m.rows)
	for r := range out {
		out[r] = append([]float64(nil), m.scores[r*m.cols:(r+1)*m.cols]...)
	}
	return out
}

// Metric returns the metric the map was scored with.
func (m *Map) Metric() metric.Kind {
	return m.kind
}

// TileSize returns the tile edge length in pixels.
func (m *Map) TileSize() int {
	return m.tileSize
}

func (m *Map) String() string {
	return fmt.Sprintf("correlation map %dx%d (%s, tile %d)", m.rows, m.cols, m.kind.Label(), m.tileSize)
}
