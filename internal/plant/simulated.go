package plant

import (
	"context"
	"math"
)

const (
	DefaultGravity       = 9.81
	DefaultBeamLength    = 0.5
	DefaultSurfaceOffset = 0.09
)

// Simulated integrates the ball-on-beam dynamics with a single explicit
// Euler sub-step per tick. The scheme (and its steady-state bias) is
// kept as-is for parity with the hardware bridge; do not substitute a
// higher-order integrator.
type Simulated struct {
	Gravity       float64
	BeamLength    float64
	SurfaceOffset float64

	state State
}

func NewSimulated(initial State) *Simulated {
	return &Simulated{
		Gravity:       DefaultGravity,
		BeamLength:    DefaultBeamLength,
		SurfaceOffset: DefaultSurfaceOffset,
		state:         initial,
	}
}

func (s *Simulated) Step(ctx context.Context, tiltRadians, dt float64) (State, error) {
	a := s.Gravity * math.Sin(tiltRadians)
	s.state.Velocity += a * dt
	s.state.Position += s.state.Velocity * dt

	// Rail clamp. Velocity is deliberately left alone: a ball pinned at
	// a rail end keeps accumulating velocity until the tilt reverses.
	half := s.BeamLength / 2
	if s.state.Position > half {
		s.state.Position = half
	}
	if s.state.Position < -half {
		s.state.Position = -half
	}

	return s.state, nil
}

// State returns the current plant state without stepping.
func (s *Simulated) State() State {
	return s.state
}

// SurfaceHeight is the beam-surface y-coordinate under the ball at
// position x for the given tilt. Derived readout only, not part of the
// integrated state.
func (s *Simulated) SurfaceHeight(x, tiltRadians float64) float64 {
	return x*math.Tan(tiltRadians) + s.SurfaceOffset
}
