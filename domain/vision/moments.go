package vision

import "image"

// Moments holds the zeroth and first area moments of a closed polygon.
type Moments struct {
	M00, M10, M01 float64
}

// PolygonMoments integrates the polygon outlined by pts with Green's theorem.
// The result is orientation independent: M00 is never negative.
func PolygonMoments(pts []image.Point) Moments {
	n := len(pts)
	if n < 3 {
		return Moments{}
	}
	var a00, a10, a01 float64
	prev := pts[n-1]
	for _, p := range pts {
		x0, y0 := float64(prev.X), float64(prev.Y)
		x1, y1 := float64(p.X), float64(p.Y)
		cross := x0*y1 - x1*y0
		a00 += cross
		a10 += cross * (x0 + x1)
		a01 += cross * (y0 + y1)
		prev = p
	}
	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns (M10/M00, M01/M00) truncated to integers.
// ok is false for a zero-area polygon.
func (m Moments) Centroid() (image.Point, bool) {
	if m.M00 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(m.M10/m.M00), int(m.M01/m.M00)), true
}
