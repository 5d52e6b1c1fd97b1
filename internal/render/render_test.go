package render

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"correlation-map/internal/correlation"
	"correlation-map/internal/metric"
	"correlation-map/pkg/colorutil"

	"gonum.org/v1/gonum/mat"
)

func testMap(t *testing.T, h, w, tile int) *correlation.Map {
	t.Helper()
	a := make([]float64, h*w)
	b := make([]float64, h*w)
	for i := range a {
		a[i] = float64(i % 17)
		b[i] = float64(i % 5)
	}
	m, err := correlation.Build(mat.NewDense(h, w, a), mat.NewDense(h, w, b), metric.SqDiff, tile)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestHeatmapSize(t *testing.T) {
	m := testMap(t, 12, 20, 4) // 3x5 cells

	opts := DefaultHeatmapOptions()
	opts.CellSize = 10
	img, err := Heatmap(m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 30+TitleHeight {
		t.Errorf("bounds = %v", b)
	}

	opts.Title = ""
	img, err = Heatmap(m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("untitled bounds = %v", b)
	}
}

func TestHeatmapColors(t *testing.T) {
	m := testMap(t, 4, 4, 2)
	opts := HeatmapOptions{CellSize: 3, Palette: colorutil.Magma()}
	img, err := Heatmap(m, opts)
	if err != nil {
		t.Fatal(err)
	}

	scores := m.Scores()
	st := m.Stats()
	for i, s := range scores {
		if s != st.Max {
			continue
		}
		r, c := i/2, i%2
		got := color.RGBAModel.Convert(img.At(c*3+1, r*3+1)).(color.RGBA)
		if want := opts.Palette.At(1); got != want {
			t.Errorf("max cell color = %v, want %v", got, want)
		}
	}
}

func TestHeatmapNil(t *testing.T) {
	if _, err := Heatmap(nil, DefaultHeatmapOptions()); err == nil {
		t.Error("nil map should fail")
	}
	if _, err := Surface(nil, DefaultSurfaceOptions()); err == nil {
		t.Error("nil map should fail")
	}
}

func TestSurfaceSize(t *testing.T) {
	for _, m := range []*correlation.Map{testMap(t, 12, 20, 4), testMap(t, 3, 3, 5)} {
		opts := DefaultSurfaceOptions()
		opts.Width, opts.Height = 320, 200
		img, err := Surface(m, opts)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
			t.Errorf("bounds = %v", b)
		}
	}
}

func TestMarkRegions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	out := MarkRegions(src, []image.Rectangle{image.Rect(2, 2, 10, 10)}, colorutil.Red, 2)
	if b := out.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("bounds = %v", b)
	}
	r, _, _, _ := out.At(2, 6).RGBA()
	if r == 0 {
		t.Error("outline not drawn")
	}
	if r, _, _, _ := out.At(6, 6).RGBA(); r != 0 {
		t.Error("interior should stay untouched")
	}
	if r, _, _, _ := src.At(2, 6).RGBA(); r != 0 {
		t.Error("source image was modified")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	img, err := Heatmap(testMap(t, 4, 4, 2), DefaultHeatmapOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
}
