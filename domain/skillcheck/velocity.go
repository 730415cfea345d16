package skillcheck

import (
	"math"
	"time"
)

// GlitchThreshold is the largest angle jump, in degrees, accepted between two
// consecutive samples. Larger jumps are treated as mis-detections.
const GlitchThreshold = 45.0

// VelocityEstimator tracks the angular speed of the moving marker.
// The zero value is ready to use. Not safe for concurrent use.
type VelocityEstimator struct {
	lastAngle float64
	lastAt    time.Time
	hasLast   bool
	velocity  float64
}

// Observe records a detection at now and returns the current speed in deg/s.
// A rejected jump keeps the previous speed but still becomes the last sample.
func (e *VelocityEstimator) Observe(angle float64, now time.Time) float64 {
	if e.hasLast && now.After(e.lastAt) {
		diff := angle - e.lastAngle
		if math.Abs(diff) < GlitchThreshold {
			e.velocity = math.Abs(diff) / now.Sub(e.lastAt).Seconds()
		}
	}
	e.lastAngle, e.lastAt, e.hasLast = angle, now, true
	return e.velocity
}

// Lost forgets the last sample and zeroes the speed.
func (e *VelocityEstimator) Lost() float64 {
	e.lastAngle, e.lastAt, e.hasLast = 0, time.Time{}, false
	e.velocity = 0
	return 0
}

// Velocity returns the current estimate in deg/s.
func (e *VelocityEstimator) Velocity() float64 { return e.velocity }

// Last returns the most recent sample, if any.
func (e *VelocityEstimator) Last() (angle float64, at time.Time, ok bool) {
	return e.lastAngle, e.lastAt, e.hasLast
}
