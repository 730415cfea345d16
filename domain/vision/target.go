package vision

import (
	"fmt"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Target is a marker color in BGR channel order with a per-channel tolerance.
type Target struct {
	B, G, R   uint8
	Tolerance int
}

// ParseHex converts "#RRGGBB" into a Target.
func ParseHex(hex string, tolerance int) (Target, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return Target{}, fmt.Errorf("vision: invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Target{}, fmt.Errorf("vision: invalid hex color %q: %w", hex, err)
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return Target{
		R:         uint8(v >> 16),
		G:         uint8(v >> 8),
		B:         uint8(v),
		Tolerance: tolerance,
	}, nil
}

// Bounds returns the inclusive BGR range [c-t, c+t] clamped to [0,255].
func (t Target) Bounds() (lo, hi [3]uint8) {
	for i, c := range [3]uint8{t.B, t.G, t.R} {
		lo[i] = clampByte(int(c) - t.Tolerance)
		hi[i] = clampByte(int(c) + t.Tolerance)
	}
	return lo, hi
}

// Contains reports whether a BGR pixel falls inside the target range on every channel.
func (t Target) Contains(b, g, r uint8) bool {
	lo, hi := t.Bounds()
	px := [3]uint8{b, g, r}
	for i := range px {
		if px[i] < lo[i] || px[i] > hi[i] {
			return false
		}
	}
	return true
}

func (t Target) String() string {
	return fmt.Sprintf("#%02x%02x%02x±%d", t.R, t.G, t.B, t.Tolerance)
}

func (t Target) scalars() (gocv.Scalar, gocv.Scalar) {
	lo, hi := t.Bounds()
	return gocv.NewScalar(float64(lo[0]), float64(lo[1]), float64(lo[2]), 0),
		gocv.NewScalar(float64(hi[0]), float64(hi[1]), float64(hi[2]), 0)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
