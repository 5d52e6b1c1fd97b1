package alignment

import (
	"errors"
	"math"

	"correlation-map/pkg/geometry"
)

// ErrDegenerateHomography is returned for homographies without a usable
// rotation component.
var ErrDegenerateHomography = errors.New("degenerate homography")

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

// RotationFromHomography returns the in-plane rotation encoded in h, in
// degrees: -atan2(h01, h00).
func RotationFromHomography(h Homography) (float64, error) {
	h00, h01 := h[0], h[1]
	if math.IsNaN(h00) || math.IsNaN(h01) || math.IsInf(h00, 0) || math.IsInf(h01, 0) {
		return 0, ErrDegenerateHomography
	}
	if h00 == 0 && h01 == 0 {
		return 0, ErrDegenerateHomography
	}
	return -math.Atan2(h01, h00) * 180 / math.Pi, nil
}

// Affine returns the affine part of h, normalized by h22.
func (h Homography) Affine() geometry.AffineTransform {
	w := h[8]
	if w == 0 {
		w = 1
	}
	return geometry.AffineTransform{
		A: h[0] / w, B: h[1] / w, TX: h[2] / w,
		C: h[3] / w, D: h[4] / w, TY: h[5] / w,
	}
}
