// Package alignment estimates the geometric relation between matched point
// sets: rigid and affine fits with RANSAC, and the rotation encoded in a
// homography.
package alignment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"correlation-map/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// ErrTooFewPoints is returned when a fit has fewer correspondences than the
// model needs.
var ErrTooFewPoints = errors.New("not enough point correspondences")

// Model selects the transform family fitted by Estimate.
type Model int

const (
	ModelRigid  Model = iota // Rotation + translation, 2 points minimum
	ModelAffine              // Full 2x3 affine, 3 points minimum
)

func (m Model) String() string {
	switch m {
	case ModelRigid:
		return "rigid"
	case ModelAffine:
		return "affine"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// ParseModel resolves a model by its String name, ignoring case.
func ParseModel(name string) (Model, error) {
	for _, m := range []Model{ModelRigid, ModelAffine} {
		if strings.EqualFold(strings.TrimSpace(name), m.String()) {
			return m, nil
		}
	}
	return ModelRigid, fmt.Errorf("unknown fit model %q (want rigid or affine)", name)
}

// MinPoints returns the number of correspondences the model needs.
func (m Model) MinPoints() int {
	if m == ModelAffine {
		return 3
	}
	return 2
}

// Options controls RANSAC.
type Options struct {
	Model      Model
	Iterations int
	Threshold  float64 // Inlier distance in pixels
}

// DefaultOptions returns a rigid fit with 2000 iterations and a 5 pixel
// inlier threshold.
func DefaultOptions() Options {
	return Options{
		Model:      ModelRigid,
		Iterations: 2000,
		Threshold:  5.0,
	}
}

// Result holds a fitted transform and its quality.
type Result struct {
	Transform geometry.AffineTransform
	Inliers   []int
	MeanError float64 // Mean distance of all points after transformation
	Angle     float64 // Rotation that undoes the transform, in degrees
}

// Estimate fits opts.Model to the correspondences src[i] -> dst[i].
func Estimate(src, dst []geometry.Point2D, opts Options) (*Result, error) {
	if len(src) != len(dst) {
		return nil, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < opts.Model.MinPoints() {
		return nil, fmt.Errorf("%s fit: %w (need %d, got %d)", opts.Model, ErrTooFewPoints, opts.Model.MinPoints(), len(src))
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultOptions().Iterations
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultOptions().Threshold
	}

	var (
		t       geometry.AffineTransform
		inliers []int
		err     error
	)
	switch opts.Model {
	case ModelAffine:
		t, inliers, err = ComputeAffineRANSAC(src, dst, opts.Iterations, opts.Threshold)
	case ModelRigid:
		t, inliers, err = ComputeRigidRANSAC(src, dst, opts.Iterations, opts.Threshold)
	default:
		return nil, fmt.Errorf("unknown model %v", opts.Model)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Transform: t,
		Inliers:   inliers,
		MeanError: CalculateAlignmentError(src, dst, t),
		Angle:     t.RotationDegrees(),
	}, nil
}

// ComputeAffineRANSAC computes an affine transform with RANSAC over 3-point
// samples, refined by least squares over the inliers.
func ComputeAffineRANSAC(srcPoints, dstPoints []geometry.Point2D, iterations int, threshold float64) (geometry.AffineTransform, []int, error) {
	if len(srcPoints) != len(dstPoints) || len(srcPoints) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("invalid point sets")
	}

	n := len(srcPoints)
	bestInliers := []int{}
	var bestTransform geometry.AffineTransform

	for iter := 0; iter < iterations; iter++ {
		indices := rand.Perm(n)[:3]

		sample := make([]geometry.Point2D, 3)
		target := make([]geometry.Point2D, 3)
		for i, idx := range indices {
			sample[i] = srcPoints[idx]
			target[i] = dstPoints[idx]
		}

		transform, err := computeAffineFromPoints(sample, target)
		if err != nil {
			continue
		}

		inliers := countInliers(srcPoints, dstPoints, transform, threshold)
		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestTransform = transform
		}
		if len(bestInliers) == n {
			break
		}
	}

	if len(bestInliers) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("RANSAC failed to find enough inliers")
	}

	inlierSrc, inlierDst := subset(srcPoints, dstPoints, bestInliers)
	finalTransform, err := computeAffineLeastSquares(inlierSrc, inlierDst)
	if err != nil {
		return bestTransform, bestInliers, nil
	}
	return finalTransform, bestInliers, nil
}

// ComputeRigidRANSAC computes a rigid transform (rotation + translation, no
// scale) with RANSAC over 2-point samples, refined over the inliers.
func ComputeRigidRANSAC(srcPoints, dstPoints []geometry.Point2D, iterations int, threshold float64) (geometry.AffineTransform, []int, error) {
	if len(srcPoints) != len(dstPoints) || len(srcPoints) < 2 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("invalid point sets")
	}

	n := len(srcPoints)
	bestInliers := []int{}

	for iter := 0; iter < iterations; iter++ {
		indices := rand.Perm(n)[:2]
		i0, i1 := indices[0], indices[1]

		transform, err := computeRigidFrom2(srcPoints[i0], srcPoints[i1], dstPoints[i0], dstPoints[i1])
		if err != nil {
			continue
		}

		inliers := countInliers(srcPoints, dstPoints, transform, threshold)
		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
		}
		if len(bestInliers) == n {
			break
		}
	}

	if len(bestInliers) < 2 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("rigid RANSAC failed to find enough inliers")
	}

	inlierSrc, inlierDst := subset(srcPoints, dstPoints, bestInliers)
	return computeRigidLeastSquares(inlierSrc, inlierDst), bestInliers, nil
}

func countInliers(src, dst []geometry.Point2D, t geometry.AffineTransform, threshold float64) []int {
	var inliers []int
	for i := range src {
		if t.Apply(src[i]).Distance(dst[i]) < threshold {
			inliers = append(inliers, i)
		}
	}
	return inliers
}

func subset(src, dst []geometry.Point2D, idx []int) ([]geometry.Point2D, []geometry.Point2D) {
	s := make([]geometry.Point2D, len(idx))
	d := make([]geometry.Point2D, len(idx))
	for i, j := range idx {
		s[i] = src[j]
		d[i] = dst[j]
	}
	return s, d
}

// computeRigidFrom2 computes a rigid transform from 2 point pairs.
func computeRigidFrom2(s0, s1, d0, d1 geometry.Point2D) (geometry.AffineTransform, error) {
	sx, sy := s1.X-s0.X, s1.Y-s0.Y
	dx, dy := d1.X-d0.X, d1.Y-d0.Y

	srcLen := math.Sqrt(sx*sx + sy*sy)
	dstLen := math.Sqrt(dx*dx + dy*dy)
	if srcLen < 0.001 || dstLen < 0.001 {
		return geometry.AffineTransform{}, fmt.Errorf("degenerate points")
	}

	theta := math.Atan2(dy, dx) - math.Atan2(sy, sx)
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	// d0 = R * s0 + t  =>  t = d0 - R * s0
	tx := d0.X - (cosT*s0.X - sinT*s0.Y)
	ty := d0.Y - (sinT*s0.X + cosT*s0.Y)

	return geometry.AffineTransform{
		A: cosT, B: -sinT, TX: tx,
		C: sinT, D: cosT, TY: ty,
	}, nil
}

// computeRigidLeastSquares computes the best rigid transform from N point
// pairs around their centroids.
func computeRigidLeastSquares(src, dst []geometry.Point2D) geometry.AffineTransform {
	n := float64(len(src))

	var srcCx, srcCy, dstCx, dstCy float64
	for i := range src {
		srcCx += src[i].X
		srcCy += src[i].Y
		dstCx += dst[i].X
		dstCy += dst[i].Y
	}
	srcCx /= n
	srcCy /= n
	dstCx /= n
	dstCy /= n

	var dotSum, crossSum float64
	for i := range src {
		sx, sy := src[i].X-srcCx, src[i].Y-srcCy
		dx, dy := dst[i].X-dstCx, dst[i].Y-dstCy
		dotSum += sx*dx + sy*dy
		crossSum += sx*dy - sy*dx
	}

	theta := math.Atan2(crossSum, dotSum)
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	tx := dstCx - (cosT*srcCx - sinT*srcCy)
	ty := dstCy - (sinT*srcCx + cosT*srcCy)

	return geometry.AffineTransform{
		A: cosT, B: -sinT, TX: tx,
		C: sinT, D: cosT, TY: ty,
	}
}

// computeAffineFromPoints computes an affine transform from exactly 3 point pairs.
func computeAffineFromPoints(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	if len(src) != 3 || len(dst) != 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need exactly 3 points")
	}

	// [x', y'] = [a, b, tx; c, d, ty] * [x, y, 1]
	A := mat.NewDense(6, 6, nil)
	B := mat.NewVecDense(6, nil)
	fillAffineSystem(A, B, src, dst)

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return affineFromParams(&params), nil
}

// computeAffineLeastSquares solves the overdetermined affine system with QR.
func computeAffineLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 points")
	}

	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)
	fillAffineSystem(A, B, src, dst)

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return affineFromParams(&params), nil
}

func fillAffineSystem(A *mat.Dense, B *mat.VecDense, src, dst []geometry.Point2D) {
	for i := range src {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}
}

func affineFromParams(p *mat.VecDense) geometry.AffineTransform {
	return geometry.AffineTransform{
		A:  p.AtVec(0),
		B:  p.AtVec(1),
		TX: p.AtVec(2),
		C:  p.AtVec(3),
		D:  p.AtVec(4),
		TY: p.AtVec(5),
	}
}

// CalculateAlignmentError calculates the mean alignment error after transformation.
func CalculateAlignmentError(srcPoints, dstPoints []geometry.Point2D, transform geometry.AffineTransform) float64 {
	if len(srcPoints) != len(dstPoints) || len(srcPoints) == 0 {
		return math.Inf(1)
	}

	var total float64
	for i := range srcPoints {
		total += transform.Apply(srcPoints[i]).Distance(dstPoints[i])
	}
	return total / float64(len(srcPoints))
}
