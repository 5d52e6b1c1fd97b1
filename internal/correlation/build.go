package correlation

import (
	"errors"
	"fmt"
	"image"
	"log"

	imgpkg "correlation-map/internal/image"
	"correlation-map/internal/metric"
	"correlation-map/internal/tiling"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientTiles is returned when the image that defines the map shape
// has more tiles than the other image, so some cells would have no pair.
var ErrInsufficientTiles = errors.New("not enough tile pairs to fill the correlation map")

// BuildFromImages converts both images to grayscale and builds the map.
func BuildFromImages(source, destination image.Image, kind metric.Kind, tileSize int) (*Map, error) {
	src, err := imgpkg.Gray(source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	dst, err := imgpkg.Gray(destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	return Build(src, dst, kind, tileSize)
}

// Build partitions both matrices into tileSize tiles, pairs them by position
// and scores each pair with kind. The map shape follows the matrix with the
// smaller area; on a tie the destination is used.
func Build(source, destination *mat.Dense, kind metric.Kind, tileSize int) (*Map, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("build correlation map: invalid metric %v", kind)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("build correlation map: %w (got %d)", tiling.ErrTileSize, tileSize)
	}
	if isEmpty(source) || isEmpty(destination) {
		return nil, fmt.Errorf("build correlation map: %w", imgpkg.ErrEmptyImage)
	}

	hs, ws := source.Dims()
	hd, wd := destination.Dims()
	h, w := hd, wd
	if hs*ws < hd*wd {
		h, w = hs, ws
	}
	rows, cols := tiling.GridSize(h, w, tileSize)
	cells := rows * cols

	srcTiles, err := tiling.Partition(source, tileSize)
	if err != nil {
		return nil, err
	}
	dstTiles, err := tiling.Partition(destination, tileSize)
	if err != nil {
		return nil, err
	}

	pairs := min(len(srcTiles), len(dstTiles))
	if pairs < cells {
		return nil, fmt.Errorf("build correlation map: %w (%d pairs for %dx%d cells)",
			ErrInsufficientTiles, pairs, rows, cols)
	}

	log.Printf("Building %dx%d correlation map with %s, tile %d", rows, cols, kind.Label(), tileSize)
	scores := make([]float64, cells)
	for i := range scores {
		a, b := tiling.Reconcile(srcTiles[i], dstTiles[i])
		scores[i] = kind.Score(a, b)
	}

	return &Map{
		kind:     kind,
		tileSize: tileSize,
		rows:     rows,
		cols:     cols,
		height:   h,
		width:    w,
		scores:   scores,
	}, nil
}

func isEmpty(m *mat.Dense) bool {
	if m == nil || m.IsEmpty() {
		return true
	}
	r, c := m.Dims()
	return r == 0 || c == 0
}
