package control

import "math"

// Beam servo travel on the reference rig, in degrees. Commands beyond
// this range saturate rather than fault.
const (
	DefaultTiltMinDeg = -38.0
	DefaultTiltMaxDeg = 38.0
)

// Clamp saturates raw into [min, max].
func Clamp(raw, min, max float64) float64 {
	if raw < min {
		return min
	}
	if raw > max {
		return max
	}
	return raw
}

// Radians converts an actuator command in degrees to the radians the
// plant expects.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
