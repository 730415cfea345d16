package track

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// Region is the valid track area for one frame. Mask is single channel,
// width x height, and owned by the caller (see Close). Contour is the outer
// boundary of the mask for display, nil when the mask is empty.
type Region struct {
	Geometry Geometry
	Contour  []image.Point
	Mask     gocv.Mat
}

// Close releases the mask.
func (r *Region) Close() error {
	if r == nil {
		return nil
	}
	return r.Mask.Close()
}

// Strategy builds the track region for a frame of the given size.
type Strategy interface {
	Name() string
	Build(frame gocv.Mat, width, height int) Region
}

// NewStrategy selects a strategy by name: "annulus" (default) or "dark".
func NewStrategy(name string, fraction float64, darkMax int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "annulus":
		return Annulus{ThicknessFraction: fraction}, nil
	case "dark":
		return DarkRegion{ThicknessFraction: fraction, DarkMax: darkMax}, nil
	default:
		return Annulus{ThicknessFraction: fraction}, fmt.Errorf("track: unknown strategy %q", name)
	}
}

// Annulus is the static quarter-annulus band. It ignores frame content.
type Annulus struct {
	ThicknessFraction float64
}

func (a Annulus) Name() string { return "annulus" }

func (a Annulus) Build(_ gocv.Mat, width, height int) Region {
	return BuildAnnulus(width, height, a.ThicknessFraction)
}

// BuildAnnulus draws the band between the inner and outer radius over the
// 270°..360° sector around the bottom-left pivot. Total for any input; a
// zero-sized rectangle yields an empty mask.
func BuildAnnulus(width, height int, fraction float64) Region {
	g := NewGeometry(width, height, fraction)
	if width <= 0 || height <= 0 {
		return Region{Geometry: g, Mask: gocv.NewMat()}
	}
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	if g.Outer > 0 {
		gocv.Ellipse(&mask, g.Pivot, image.Pt(g.Outer, g.Outer), 0, 270, 360, white, -1)
		if g.Inner > 0 {
			gocv.Ellipse(&mask, g.Pivot, image.Pt(g.Inner, g.Inner), 0, 270, 360, black, -1)
		}
	}
	return Region{Geometry: g, Contour: outline(mask), Mask: mask}
}

// DarkRegion takes the track to be the largest dark blob inside the outer
// sector, falling back to the static band when none is visible.
type DarkRegion struct {
	ThicknessFraction float64
	DarkMax           int // channel value at or below which a pixel counts as dark
	MinArea           float64
}

func (d DarkRegion) Name() string { return "dark" }

func (d DarkRegion) Build(frame gocv.Mat, width, height int) Region {
	if width <= 0 || height <= 0 || frame.Empty() || frame.Rows() != height || frame.Cols() != width {
		return BuildAnnulus(width, height, d.ThicknessFraction)
	}
	sector := BuildAnnulus(width, height, 1)
	defer sector.Close()

	dark := gocv.NewMat()
	defer dark.Close()
	hi := float64(d.DarkMax)
	gocv.InRangeWithScalar(frame, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(hi, hi, hi, 0), &dark)
	gocv.BitwiseAnd(dark, sector.Mask, &dark)
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	gocv.Dilate(dark, &dark, kernel)
	kernel.Close()

	contours := gocv.FindContours(dark, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); best < 0 || a > bestArea {
			best, bestArea = i, a
		}
	}
	minArea := d.MinArea
	if minArea <= 0 {
		minArea = 1
	}
	if best < 0 || bestArea < minArea {
		return BuildAnnulus(width, height, d.ThicknessFraction)
	}
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	gocv.DrawContours(&mask, contours, best, white, -1)
	return Region{
		Geometry: NewGeometry(width, height, d.ThicknessFraction),
		Contour:  contours.At(best).ToPoints(),
		Mask:     mask,
	}
}

// outline returns the largest external boundary of mask, or nil.
func outline(mask gocv.Mat) []image.Point {
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		return nil
	}
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	best, bestArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return nil
	}
	return contours.At(best).ToPoints()
}
