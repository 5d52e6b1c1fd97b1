package correlation

import (
	"fmt"
	"image"
	"math"

	"correlation-map/internal/metric"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the scores of a map.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Stats returns the minimum, maximum, mean and standard deviation of the scores.
func (m *Map) Stats() Stats {
	if len(m.scores) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(m.scores, nil)
	if len(m.scores) == 1 {
		std = 0
	}
	return Stats{
		Min:    floats.Min(m.scores),
		Max:    floats.Max(m.scores),
		Mean:   mean,
		StdDev: std,
	}
}

// Dissimilarity returns every score mapped to [0,1], where 1 is the least
// similar tile pair of the map. A map whose scores are all equal yields zeros.
func (m *Map) Dissimilarity() []float64 {
	out := make([]float64, len(m.scores))
	if len(out) == 0 {
		return out
	}
	lo, hi := floats.Min(m.scores), floats.Max(m.scores)
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		return out
	}
	for i, s := range m.scores {
		n := (s - lo) / span
		if m.kind.Family() == metric.FamilySimilarity {
			n = 1 - n
		}
		out[i] = n
	}
	return out
}

// Differences returns the pixel rectangles of tiles whose dissimilarity is at
// least searchLimit percent. Rectangles are clipped to the compared area.
func (m *Map) Differences(searchLimit int) ([]image.Rectangle, error) {
	if searchLimit < 0 || searchLimit > 100 {
		return nil, fmt.Errorf("search limit %d outside [0,100]", searchLimit)
	}
	threshold := float64(searchLimit) / 100

	lo, hi := m.Stats().Min, m.Stats().Max
	if hi == lo {
		return nil, nil
	}

	var rects []image.Rectangle
	for i, d := range m.Dissimilarity() {
		if d < threshold {
			continue
		}
		rects = append(rects, m.TileRect(i/m.cols, i%m.cols))
	}
	return rects, nil
}

// TileRect returns the pixel rectangle covered by cell (r, c).
func (m *Map) TileRect(r, c int) image.Rectangle {
	t := m.tileSize
	return image.Rect(c*t, r*t, min((c+1)*t, m.width), min((r+1)*t, m.height))
}
