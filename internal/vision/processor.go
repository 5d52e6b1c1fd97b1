package vision

import (
	"image/color"

	"correlation-map/internal/alignment"
	"correlation-map/pkg/colorutil"
)

// Homography RANSAC parameters.
const (
	ransacThreshold = 5.0
	maxIter         = 2000
	confidence      = 0.995
)

// Processor performs the computer vision steps of a correlation run.
type Processor struct {
	// Fallback is used when no homography can be estimated from the matches.
	Fallback alignment.Options

	MatchColor color.RGBA
	MarkColor  color.RGBA
	Thickness  int
}

// NewProcessor returns a processor with a rigid fallback fit, green match
// lines and red region marks.
func NewProcessor() *Processor {
	return &Processor{
		Fallback:   alignment.DefaultOptions(),
		MatchColor: colorutil.Green,
		MarkColor:  colorutil.Red,
		Thickness:  2,
	}
}
