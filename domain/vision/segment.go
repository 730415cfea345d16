package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Options tunes a single Segment call.
type Options struct {
	MinArea     float64
	ExpandWidth int       // square dilation kernel width, 0 disables
	Limit       *gocv.Mat // optional single-channel mask restricting the search
}

// RotatedRect is the minimum-area bounding box of a detected region.
type RotatedRect struct {
	Center        image.Point
	Width, Height int
	Angle         float64
	Points        []image.Point
}

// Detection is the outcome of segmenting one marker in one frame.
// Mask is always populated and owned by the caller (see Close); the other
// fields are only meaningful when Found is true.
type Detection struct {
	Found    bool
	Centroid image.Point
	Contour  []image.Point
	Area     float64
	Rect     *RotatedRect
	Mask     gocv.Mat
}

// Close releases the mask.
func (d *Detection) Close() error {
	if d == nil {
		return nil
	}
	return d.Mask.Close()
}

// Segment locates the largest region of frame whose pixels match target.
// frame must be 8-bit BGR. It never fails: every "not found" case yields
// Found == false with the membership mask still attached.
func Segment(frame gocv.Mat, target Target, opts Options) Detection {
	src := frame
	limited := opts.Limit != nil && !opts.Limit.Empty()
	if limited {
		masked := gocv.Zeros(frame.Rows(), frame.Cols(), frame.Type())
		defer masked.Close()
		frame.CopyToWithMask(&masked, *opts.Limit)
		src = masked
	}

	lo, hi := target.scalars()
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(src, lo, hi, &mask)
	if limited {
		// Zeroed out-of-track pixels would match a near-black target.
		gocv.BitwiseAnd(mask, *opts.Limit, &mask)
	}
	if opts.ExpandWidth > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(opts.ExpandWidth, opts.ExpandWidth))
		gocv.Dilate(mask, &mask, kernel)
		kernel.Close()
	}

	det := Detection{Mask: mask}
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := largestContour(contours)
	if best < 0 || bestArea < opts.MinArea {
		return det
	}
	pv := contours.At(best)
	pts := pv.ToPoints()
	centroid, ok := PolygonMoments(pts).Centroid()
	if !ok {
		return det
	}
	det.Found = true
	det.Centroid = centroid
	det.Contour = pts
	det.Area = bestArea
	if len(pts) >= 5 {
		rr := gocv.MinAreaRect(pv)
		det.Rect = &RotatedRect{
			Center: rr.Center,
			Width:  rr.Width,
			Height: rr.Height,
			Angle:  rr.Angle,
			Points: rr.Points,
		}
	}
	return det
}

// largestContour returns the index and area of the contour enclosing the most area, or -1.
func largestContour(contours gocv.PointsVector) (int, float64) {
	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	return best, bestArea
}
