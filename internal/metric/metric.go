// Package metric implements the tile similarity metrics used to score a pair
// of equally shaped grayscale matrices.
//
// The distance family (square difference) scores identical inputs lowest; the
// similarity family (cross correlation, correlation coefficient) scores them
// highest. Normalized variants return exactly 1 when their denominator is 0.
package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Func scores two matrices of identical shape.
type Func func(a, b mat.Matrix) float64

// SquareDifference returns Σ(A−B)².
func SquareDifference(a, b mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(a, b)
	return sumSquares(&diff)
}

// SquareDifferenceNormed returns Σ(A−B)² / sqrt(ΣA²·ΣB²).
func SquareDifferenceNormed(a, b mat.Matrix) float64 {
	return normed(SquareDifference(a, b), sumSquares(a)*sumSquares(b))
}

// CrossCorrelation returns Σ(A·B).
func CrossCorrelation(a, b mat.Matrix) float64 {
	return sumProduct(a, b)
}

// CrossCorrelationNormed returns Σ(A·B) / sqrt(ΣA²·ΣB²).
func CrossCorrelationNormed(a, b mat.Matrix) float64 {
	return normed(sumProduct(a, b), sumSquares(a)*sumSquares(b))
}

// CorrelationCoefficient returns Σ((A−μA)(B−μB)).
func CorrelationCoefficient(a, b mat.Matrix) float64 {
	return sumProduct(centered(a), centered(b))
}

// CorrelationCoefficientNormed returns Σ((A−μA)(B−μB)) / sqrt(Σ(A−μA)²·Σ(B−μB)²).
func CorrelationCoefficientNormed(a, b mat.Matrix) float64 {
	ca, cb := centered(a), centered(b)
	return normed(sumProduct(ca, cb), sumSquares(ca)*sumSquares(cb))
}

func normed(numerator, squaredDenominator float64) float64 {
	denominator := math.Sqrt(squaredDenominator)
	if denominator == 0 {
		return 1
	}
	return numerator / denominator
}

func sumSquares(m mat.Matrix) float64 {
	return sumProduct(m, m)
}

func sumProduct(a, b mat.Matrix) float64 {
	var prod mat.Dense
	prod.MulElem(a, b)
	return mat.Sum(&prod)
}

// centered returns m minus its mean.
func centered(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	mean := mat.Sum(m) / float64(r*c)

	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return v - mean }, m)
	return &out
}
