package plant

import (
	"context"
	"errors"
	"math"
)

// State is the observable plant state: ball position along the beam (m)
// and its velocity (m/s). Position is bounded by the beam rails;
// velocity is not.
type State struct {
	Position float64
	Velocity float64
}

func (s State) IsValid() bool {
	return !math.IsNaN(s.Position) && !math.IsInf(s.Position, 0) &&
		!math.IsNaN(s.Velocity) && !math.IsInf(s.Velocity, 0)
}

// Plant is the capability the loop drives each tick: apply the commanded
// beam tilt (radians) for one step of dt and report the resulting state.
// Implementations own their state between calls. A hardware plant may
// block on I/O but must return within the tick deadline.
type Plant interface {
	Step(ctx context.Context, tiltRadians, dt float64) (State, error)
}

// Domain errors for plant stepping.
var (
	// ErrDegradedReading indicates a step missed its deadline or failed
	// transiently; the returned state is the last known good one.
	ErrDegradedReading = errors.New("plant: degraded reading")

	// ErrFault indicates consecutive failures beyond the retry budget.
	// The loop must fail safe and stop.
	ErrFault = errors.New("plant: fault budget exhausted")

	// ErrInvalidState indicates a sensor frame with NaN or Inf values.
	ErrInvalidState = errors.New("plant: invalid state (NaN or Inf)")
)
