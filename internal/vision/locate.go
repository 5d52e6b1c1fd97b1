package vision

import (
	"fmt"
	"image"
	"log"

	"correlation-map/internal/metric"
	"correlation-map/pkg/geometry"

	"gocv.io/x/gocv"
)

// SizeError is returned when the template does not fit in the searched image.
type SizeError struct {
	Template image.Point
	Image    image.Point
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("template %dx%d larger than image %dx%d",
		e.Template.X, e.Template.Y, e.Image.X, e.Image.Y)
}

// Locate finds src inside dst by template matching with the OpenCV mode of
// kind. Distance metrics take the minimum of the response, similarity
// metrics the maximum. The region has the size of src.
func (p *Processor) Locate(src, dst image.Image, kind metric.Kind) (geometry.Region, error) {
	if !kind.Valid() {
		return geometry.Region{}, fmt.Errorf("locate: invalid metric %v", kind)
	}
	ts, is := src.Bounds().Size(), dst.Bounds().Size()
	if ts.X > is.X || ts.Y > is.Y {
		return geometry.Region{}, &SizeError{Template: ts, Image: is}
	}

	tmpl, err := grayMat(src)
	if err != nil {
		return geometry.Region{}, fmt.Errorf("locate: source: %w", err)
	}
	defer tmpl.Close()
	search, err := grayMat(dst)
	if err != nil {
		return geometry.Region{}, fmt.Errorf("locate: destination: %w", err)
	}
	defer search.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(search, tmpl, &result, gocv.TemplateMatchMode(kind.TemplateMode()), mask)

	minVal, maxVal, minLoc, maxLoc := gocv.MinMaxLoc(result)
	score, loc := kind.Best(float64(minVal), float64(maxVal), minLoc, maxLoc)
	log.Printf("Locate: %s best %.4f at (%d,%d)", kind.Label(), score, loc.X, loc.Y)

	return geometry.NewRegion(loc.X, loc.Y, loc.X+ts.X, loc.Y+ts.Y), nil
}
