// Package tiling splits grayscale matrices into fixed-size tiles.
package tiling

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrTileSize is returned for non-positive tile sizes.
var ErrTileSize = errors.New("tile size must be positive")

// GridSize returns the tile grid shape of an h×w matrix: ceil(h/size) rows
// and ceil(w/size) columns.
func GridSize(h, w, size int) (rows, cols int) {
	if size <= 0 {
		return 0, 0
	}
	return ceilDiv(h, size), ceilDiv(w, size)
}

// Partition walks m in row-major order in steps of size and returns the
// tiles as views into m. Tiles on the right and bottom edges are clipped to
// the matrix bounds and may be smaller than size×size.
func Partition(m *mat.Dense, size int) ([]mat.Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("partition: %w (got %d)", ErrTileSize, size)
	}

	h, w := m.Dims()
	rows, cols := GridSize(h, w, size)
	tiles := make([]mat.Matrix, 0, rows*cols)
	for r := 0; r < h; r += size {
		for c := 0; c < w; c += size {
			tiles = append(tiles, m.Slice(r, min(r+size, h), c, min(c+size, w)))
		}
	}
	return tiles, nil
}

// Reconcile returns a and b truncated to their common top-left region
// (minimum height × minimum width). Tiles of identical shape are returned
// unchanged; tiles are never padded.
func Reconcile(a, b mat.Matrix) (mat.Matrix, mat.Matrix) {
	ha, wa := a.Dims()
	hb, wb := b.Dims()
	if ha == hb && wa == wb {
		return a, b
	}
	h, w := min(ha, hb), min(wa, wb)
	return truncate(a, h, w), truncate(b, h, w)
}

type slicer interface {
	Slice(i, k, j, l int) mat.Matrix
}

func truncate(m mat.Matrix, h, w int) mat.Matrix {
	if r, c := m.Dims(); r == h && c == w {
		return m
	}
	if s, ok := m.(slicer); ok {
		return s.Slice(0, h, 0, w)
	}
	out := mat.NewDense(h, w, nil)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
