package geometry

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Region is a rectangular selection given by two corner points in any order.
//
// Region is a value type: derived corners are computed from the raw
// coordinates on every call, and a new selection replaces the old value.
// "Top" is the larger Y coordinate.
type Region struct {
	X1 int `json:"x_1" yaml:"x1"`
	Y1 int `json:"y_1" yaml:"y1"`
	X2 int `json:"x_2" yaml:"x2"`
	Y2 int `json:"y_2" yaml:"y2"`
}

// Coordinate is one named raw coordinate of a Region.
type Coordinate struct {
	Name  string
	Value int
}

// NewRegion creates a Region from two corners.
func NewRegion(x1, y1, x2, y2 int) Region {
	return Region{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// RegionFromRectangle creates a Region covering r.
func RegionFromRectangle(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// ParseRegion parses "x1,y1,x2,y2".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	return NewRegion(v[0], v[1], v[2], v[3]), nil
}

// Width returns |X2-X1|.
func (r Region) Width() int {
	return abs(r.X2 - r.X1)
}

// Height returns |Y2-Y1|.
func (r Region) Height() int {
	return abs(r.Y2 - r.Y1)
}

// Empty reports whether the region has zero width or height.
func (r Region) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// TopLeft returns (min X, max Y).
func (r Region) TopLeft() PointInt {
	return PointInt{X: min(r.X1, r.X2), Y: max(r.Y1, r.Y2)}
}

// BottomRight returns (max X, min Y).
func (r Region) BottomRight() PointInt {
	return PointInt{X: max(r.X1, r.X2), Y: min(r.Y1, r.Y2)}
}

// BottomLeft returns (min X, min Y).
func (r Region) BottomLeft() PointInt {
	return PointInt{X: min(r.X1, r.X2), Y: min(r.Y1, r.Y2)}
}

// Rect returns the canonical image rectangle covered by the region.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Items returns the raw coordinates in x_1, y_1, x_2, y_2 order.
func (r Region) Items() []Coordinate {
	return []Coordinate{
		{Name: "x_1", Value: r.X1},
		{Name: "y_1", Value: r.Y1},
		{Name: "x_2", Value: r.X2},
		{Name: "y_2", Value: r.Y2},
	}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
