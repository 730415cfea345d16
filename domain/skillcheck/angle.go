package skillcheck

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Angle maps point to its progress along the track, in degrees, relative to pivot.
// Across the 270°..360° sector the result rises monotonically from 0 to 90.
func Angle(point, pivot image.Point) float64 {
	d := r2.Sub(vec(point), vec(pivot))
	raw := math.Atan2(d.Y, d.X) * 180 / math.Pi
	if raw < 0 {
		return 90 + raw
	}
	return 90 - raw
}

// Distance is the Euclidean distance between two pixel positions.
func Distance(a, b image.Point) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

func vec(p image.Point) r2.Vec { return r2.Vec{X: float64(p.X), Y: float64(p.Y)} }
