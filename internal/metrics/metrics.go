// Package metrics provides per-run aggregates computed from loop ticks.
// Each metric is a [sim.Observer] that folds snapshots into one value.
package metrics

import (
	"math"

	"github.com/san-kum/beamctl/internal/sim"
)

type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// ControlEffort is the mean absolute tilt command, a proxy for actuator
// wear on the real rig.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) OnTick(s sim.Snapshot) {
	c.sum += math.Abs(s.TiltDeg)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// TrackingError is the mean absolute setpoint error.
type TrackingError struct {
	sum     float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{}
}

func (t *TrackingError) Name() string { return "tracking_error" }

func (t *TrackingError) OnTick(s sim.Snapshot) {
	t.sum += math.Abs(s.Setpoint - s.Position)
	t.samples++
}

func (t *TrackingError) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.sum / float64(t.samples)
}

func (t *TrackingError) Reset() {
	t.sum = 0
	t.samples = 0
}

// Saturation is the fraction of ticks spent at an actuator limit.
type Saturation struct {
	limit     float64
	saturated int
	samples   int
}

func NewSaturation(limitDeg float64) *Saturation {
	return &Saturation{limit: limitDeg}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) OnTick(snap sim.Snapshot) {
	s.samples++
	if math.Abs(snap.TiltDeg) >= s.limit {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
