package geometry

import (
	"image"
	"math"
	"testing"
)

func TestRegionNormalization(t *testing.T) {
	r := NewRegion(50, 10, 5, 80)

	if got := r.Width(); got != 45 {
		t.Errorf("Width() = %d, want 45", got)
	}
	if got := r.Height(); got != 70 {
		t.Errorf("Height() = %d, want 70", got)
	}
	if got := r.TopLeft(); got != (PointInt{X: 5, Y: 80}) {
		t.Errorf("TopLeft() = %+v, want (5,80)", got)
	}
	if got := r.BottomRight(); got != (PointInt{X: 50, Y: 10}) {
		t.Errorf("BottomRight() = %+v, want (50,10)", got)
	}
	if got := r.BottomLeft(); got != (PointInt{X: 5, Y: 10}) {
		t.Errorf("BottomLeft() = %+v, want (5,10)", got)
	}
	if got := r.Rect(); got != image.Rect(5, 10, 50, 80) {
		t.Errorf("Rect() = %v, want (5,10)-(50,80)", got)
	}
}

func TestRegionCornerOrderIrrelevant(t *testing.T) {
	a := NewRegion(5, 10, 50, 80)
	b := NewRegion(50, 80, 5, 10)
	c := NewRegion(5, 80, 50, 10)

	for _, r := range []Region{b, c} {
		if r.Width() != a.Width() || r.Height() != a.Height() {
			t.Errorf("%v: size %dx%d, want %dx%d", r, r.Width(), r.Height(), a.Width(), a.Height())
		}
		if r.TopLeft() != a.TopLeft() || r.BottomRight() != a.BottomRight() || r.BottomLeft() != a.BottomLeft() {
			t.Errorf("%v: corners differ from %v", r, a)
		}
		if r.Rect() != a.Rect() {
			t.Errorf("%v: Rect() = %v, want %v", r, r.Rect(), a.Rect())
		}
	}
}

func TestRegionItemsOrder(t *testing.T) {
	items := NewRegion(1, 2, 3, 4).Items()
	want := []Coordinate{{"x_1", 1}, {"y_1", 2}, {"x_2", 3}, {"y_2", 4}}
	if len(items) != len(want) {
		t.Fatalf("Items() len = %d, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("Items()[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("10, 20,30,40")
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	if r != NewRegion(10, 20, 30, 40) {
		t.Errorf("ParseRegion = %v", r)
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("ParseRegion(%q) expected error", bad)
		}
	}
}

func TestRegionEmpty(t *testing.T) {
	if !NewRegion(3, 3, 3, 10).Empty() {
		t.Error("zero-width region should be empty")
	}
	if NewRegion(0, 0, 1, 1).Empty() {
		t.Error("1x1 region should not be empty")
	}
}

func TestRotationDegrees(t *testing.T) {
	for _, deg := range []float64{0, 15, -30, 90} {
		rad := deg * math.Pi / 180
		got := Rotation(rad).RotationDegrees()
		if math.Abs(got-deg) > 1e-9 {
			t.Errorf("Rotation(%v°).RotationDegrees() = %v", deg, got)
		}
	}
}

func TestAffineApply(t *testing.T) {
	tr := Rotation(math.Pi / 2)
	tr.TX, tr.TY = 4, -2
	got := tr.Apply(NewPoint2D(1, 0))
	if got.Distance(NewPoint2D(4, -1)) > 1e-9 {
		t.Errorf("Apply = %+v, want (4,-1)", got)
	}
}
