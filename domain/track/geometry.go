package track

import (
	"image"
	"math"
)

// Geometry describes the quarter-annulus band the markers travel along.
// The pivot is the bottom-left corner of the capture rectangle.
type Geometry struct {
	Pivot     image.Point
	Outer     int
	Thickness int
	Inner     int
}

// NewGeometry derives the band for a width x height rectangle.
// inner <= outer always holds; fraction 0 yields a zero-thickness band.
func NewGeometry(width, height int, fraction float64) Geometry {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	outer := width
	if height < outer {
		outer = height
	}
	thickness := int(math.Floor(float64(outer) * fraction))
	inner := outer - thickness
	if inner < 0 {
		inner = 0
	}
	return Geometry{
		Pivot:     image.Pt(0, height),
		Outer:     outer,
		Thickness: thickness,
		Inner:     inner,
	}
}
