// Package params holds the live-tunable loop parameters behind a single
// atomic snapshot/swap, so a tuning interface can write concurrently
// with the control loop's per-tick read without ever exposing a torn
// tuple.
package params

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Documented tuning ranges for the reference rig. Writes outside them
// are rejected at the boundary.
const (
	MinSetpoint = -0.23
	MaxSetpoint = 0.23
	MinKp       = 0.0
	MaxKp       = 100.0
	MinKi       = 0.0
	MaxKi       = 10.0
	MinKd       = 0.0
	MaxKd       = 20.0
)

// ErrParameterBounds indicates a parameter value outside its documented
// range.
var ErrParameterBounds = errors.New("params: value out of bounds")

// Parameters is the tuple the loop snapshots once per tick. It is always
// read and replaced as a whole; a reader can never mix fields from two
// writes.
type Parameters struct {
	Setpoint float64
	Kp       float64
	Ki       float64
	Kd       float64
}

// Validate checks every field against its documented range.
func (p Parameters) Validate() error {
	checks := []struct {
		name     string
		val      float64
		min, max float64
	}{
		{"setpoint", p.Setpoint, MinSetpoint, MaxSetpoint},
		{"kp", p.Kp, MinKp, MaxKp},
		{"ki", p.Ki, MinKi, MaxKi},
		{"kd", p.Kd, MinKd, MaxKd},
	}
	for _, c := range checks {
		if c.val < c.min || c.val > c.max {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrParameterBounds, c.name, c.val, c.min, c.max)
		}
	}
	return nil
}

// Clamped returns a copy with every field saturated into its documented
// range, for writers that prefer saturation over rejection.
func (p Parameters) Clamped() Parameters {
	clamp := func(v, min, max float64) float64 {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	return Parameters{
		Setpoint: clamp(p.Setpoint, MinSetpoint, MaxSetpoint),
		Kp:       clamp(p.Kp, MinKp, MaxKp),
		Ki:       clamp(p.Ki, MinKi, MaxKi),
		Kd:       clamp(p.Kd, MinKd, MaxKd),
	}
}

// Store is the shared mutable parameter cell. Snapshot and Set are safe
// for concurrent use from any number of goroutines.
type Store struct {
	cur atomic.Pointer[Parameters]
}

func NewStore(initial Parameters) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.cur.Store(&initial)
	return s, nil
}

// Snapshot returns the current tuple. All four fields come from the same
// Set call.
func (s *Store) Snapshot() Parameters {
	return *s.cur.Load()
}

// Set replaces the whole tuple, rejecting out-of-range values.
func (s *Store) Set(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.cur.Store(&p)
	return nil
}
