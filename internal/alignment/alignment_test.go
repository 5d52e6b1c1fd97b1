package alignment

import (
	"errors"
	"math"
	"testing"

	"correlation-map/pkg/geometry"
)

func grid() []geometry.Point2D {
	var pts []geometry.Point2D
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			pts = append(pts, geometry.NewPoint2D(float64(x*40+7), float64(y*30+3)))
		}
	}
	return pts
}

func transformAll(t geometry.AffineTransform, pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

func TestEstimateRigidRecoversRotation(t *testing.T) {
	for _, deg := range []float64{0, 12, -30, 90} {
		rot := geometry.Rotation(deg * math.Pi / 180)
		rot.TX, rot.TY = 15, -8

		src := grid()
		dst := transformAll(rot, src)
		// One gross outlier.
		dst[3] = geometry.NewPoint2D(500, 500)

		res, err := Estimate(src, dst, DefaultOptions())
		if err != nil {
			t.Fatalf("%v°: %v", deg, err)
		}
		if len(res.Inliers) != len(src)-1 {
			t.Errorf("%v°: %d inliers, want %d", deg, len(res.Inliers), len(src)-1)
		}
		if math.Abs(res.Angle-deg) > 1e-6 {
			t.Errorf("%v°: angle = %v", deg, res.Angle)
		}
		if math.Abs(res.Transform.TX-15) > 1e-6 || math.Abs(res.Transform.TY+8) > 1e-6 {
			t.Errorf("%v°: translation = %v, %v", deg, res.Transform.TX, res.Transform.TY)
		}
	}
}

func TestEstimateAffine(t *testing.T) {
	want := geometry.AffineTransform{A: 1.1, B: 0.2, TX: 4, C: -0.1, D: 0.9, TY: 2}
	src := grid()
	dst := transformAll(want, src)

	res, err := Estimate(src, dst, Options{Model: ModelAffine, Iterations: 200, Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Transform
	for _, d := range []float64{got.A - want.A, got.B - want.B, got.TX - want.TX, got.C - want.C, got.D - want.D, got.TY - want.TY} {
		if math.Abs(d) > 1e-6 {
			t.Fatalf("affine = %+v, want %+v", got, want)
		}
	}
	if res.MeanError > 1e-6 {
		t.Errorf("MeanError = %v", res.MeanError)
	}
}

func TestEstimateTooFewPoints(t *testing.T) {
	one := []geometry.Point2D{{X: 1, Y: 1}}
	if _, err := Estimate(one, one, DefaultOptions()); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("rigid with 1 point: %v", err)
	}
	two := []geometry.Point2D{{X: 1, Y: 1}, {X: 5, Y: 2}}
	if _, err := Estimate(two, two, Options{Model: ModelAffine}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("affine with 2 points: %v", err)
	}
	if _, err := Estimate(two, one, DefaultOptions()); err == nil {
		t.Error("mismatched lengths should fail")
	}
}

func TestRigidDegenerate(t *testing.T) {
	same := []geometry.Point2D{{X: 3, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 3}}
	if _, _, err := ComputeRigidRANSAC(same, same, 50, 1); err == nil {
		t.Error("coincident points should fail")
	}
}

func TestRotationFromHomography(t *testing.T) {
	for _, deg := range []float64{0, 45, -60, 170} {
		rad := deg * math.Pi / 180
		h := Homography{
			math.Cos(rad), -math.Sin(rad), 10,
			math.Sin(rad), math.Cos(rad), 20,
			0, 0, 1,
		}
		got, err := RotationFromHomography(h)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-deg) > 1e-9 {
			t.Errorf("RotationFromHomography(%v°) = %v", deg, got)
		}
		if a := h.Affine(); math.Abs(a.RotationDegrees()-got) > 1e-9 || a.TX != 10 {
			t.Errorf("Affine() = %+v", a)
		}
	}

	for _, h := range []Homography{{}, {math.NaN(), 1}} {
		if _, err := RotationFromHomography(h); !errors.Is(err, ErrDegenerateHomography) {
			t.Errorf("RotationFromHomography(%v) err = %v", h, err)
		}
	}
}

func TestCalculateAlignmentError(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}}
	dst := []geometry.Point2D{{X: 3, Y: 4}, {X: 1, Y: 0}}
	if got := CalculateAlignmentError(src, dst, geometry.AffineTransform{A: 1, D: 1}); got != 2.5 {
		t.Errorf("error = %v, want 2.5", got)
	}
	if !math.IsInf(CalculateAlignmentError(nil, nil, geometry.AffineTransform{A: 1, D: 1}), 1) {
		t.Error("empty sets should give +Inf")
	}
}

func TestParseModel(t *testing.T) {
	for _, m := range []Model{ModelRigid, ModelAffine} {
		got, err := ParseModel(m.String())
		if err != nil || got != m {
			t.Errorf("ParseModel(%q) = %v, %v", m.String(), got, err)
		}
	}
	if got, err := ParseModel(" Affine "); err != nil || got != ModelAffine {
		t.Errorf("ParseModel(Affine) = %v, %v", got, err)
	}
	if _, err := ParseModel("projective"); err == nil {
		t.Error("unknown model should fail")
	}
}
