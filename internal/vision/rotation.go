package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"sort"

	"correlation-map/internal/alignment"
	"correlation-map/pkg/colorutil"
	"correlation-map/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrNoFeatures is returned when ORB finds no descriptors in one of the images.
var ErrNoFeatures = errors.New("no features detected")

// EstimateRotation matches ORB features between src and dst and returns the
// rotation of dst relative to src in degrees. The returned image shows the
// best matchCount matches side by side.
func (p *Processor) EstimateRotation(src, dst image.Image, matchCount int) (float64, image.Image, error) {
	srcMat, err := imageToMat(src)
	if err != nil {
		return 0, nil, fmt.Errorf("source: %w", err)
	}
	defer srcMat.Close()
	dstMat, err := imageToMat(dst)
	if err != nil {
		return 0, nil, fmt.Errorf("destination: %w", err)
	}
	defer dstMat.Close()

	srcGray := gocv.NewMat()
	defer srcGray.Close()
	gocv.CvtColor(srcMat, &srcGray, gocv.ColorBGRToGray)
	dstGray := gocv.NewMat()
	defer dstGray.Close()
	gocv.CvtColor(dstMat, &dstGray, gocv.ColorBGRToGray)

	orb := gocv.NewORB()
	defer orb.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	kpSrc, descSrc := orb.DetectAndCompute(srcGray, mask)
	defer descSrc.Close()
	kpDst, descDst := orb.DetectAndCompute(dstGray, mask)
	defer descDst.Close()
	if descSrc.Empty() || descDst.Empty() {
		return 0, nil, ErrNoFeatures
	}

	bf := gocv.NewBFMatcherWithParams(gocv.NormHamming, true)
	defer bf.Close()

	var matches []gocv.DMatch
	for _, knn := range bf.KnnMatch(descSrc, descDst, 1) {
		if len(knn) > 0 {
			matches = append(matches, knn[0])
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	log.Printf("EstimateRotation: %d/%d keypoints, %d matches", len(kpSrc), len(kpDst), len(matches))

	srcPts := make([]geometry.Point2D, len(matches))
	dstPts := make([]geometry.Point2D, len(matches))
	for i, m := range matches {
		srcPts[i] = geometry.NewPoint2D(kpSrc[m.QueryIdx].X, kpSrc[m.QueryIdx].Y)
		dstPts[i] = geometry.NewPoint2D(kpDst[m.TrainIdx].X, kpDst[m.TrainIdx].Y)
	}

	angle, err := p.angleFromPoints(srcPts, dstPts)
	if err != nil {
		return 0, nil, err
	}

	best := matches[:min(max(matchCount, 0), len(matches))]
	out := gocv.NewMat()
	defer out.Close()
	gocv.DrawMatches(srcMat, kpSrc, dstMat, kpDst, best, &out,
		bgr(p.MatchColor), bgr(colorutil.Blue), bytes.Repeat([]byte{1}, len(best)), gocv.NotDrawSinglePoints)

	vis, err := matToImage(out)
	if err != nil {
		return 0, nil, fmt.Errorf("draw matches: %w", err)
	}
	return angle, vis, nil
}

// angleFromPoints estimates the rotation from a RANSAC homography, falling
// back to a pure-Go fit when the homography is empty.
func (p *Processor) angleFromPoints(src, dst []geometry.Point2D) (float64, error) {
	if len(src) >= 4 {
		h, ok := findHomography(src, dst)
		if ok {
			angle, err := alignment.RotationFromHomography(h)
			if err == nil {
				return angle, nil
			}
		}
		log.Printf("EstimateRotation: homography unusable, falling back to %s fit", p.Fallback.Model)
	}

	res, err := alignment.Estimate(src, dst, p.Fallback)
	if err != nil {
		return 0, fmt.Errorf("estimate rotation: %w", err)
	}
	log.Printf("EstimateRotation: %s fit with %d/%d inliers, mean error %.2f px",
		p.Fallback.Model, len(res.Inliers), len(src), res.MeanError)
	return res.Angle, nil
}

func findHomography(src, dst []geometry.Point2D) (alignment.Homography, bool) {
	srcMat := pointsMat(src)
	defer srcMat.Close()
	dstMat := pointsMat(dst)
	defer dstMat.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	hm := gocv.FindHomography(srcMat, &dstMat, gocv.HomograpyMethodRANSAC, ransacThreshold, &mask, maxIter, confidence)
	defer hm.Close()
	if hm.Empty() || hm.Rows() != 3 || hm.Cols() != 3 {
		return alignment.Homography{}, false
	}

	var h alignment.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = hm.GetDoubleAt(r, c)
		}
	}
	return h, true
}

func pointsMat(pts []geometry.Point2D) gocv.Mat {
	m := gocv.NewMatWithSize(len(pts), 2, gocv.MatTypeCV32F)
	for i, p := range pts {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}

// Rotate rotates img by angle degrees about its centre. The output keeps the
// input size; uncovered pixels are black.
func (p *Processor) Rotate(img image.Image, angle float64) (image.Image, error) {
	m, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	defer m.Close()

	w, h := m.Cols(), m.Rows()
	rot := gocv.GetRotationMatrix2D(image.Point{X: w / 2, Y: h / 2}, angle, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	defer rotated.Close()
	gocv.WarpAffine(m, &rotated, rot, image.Point{X: w, Y: h})

	return matToImage(rotated)
}
