// Package control implements the PID law and actuator mapping for the
// ball-and-beam loop.
//
//   - [PID]: Proportional-Integral-Derivative controller state
//   - [Clamp]: saturating actuator mapper
//
// Gains are passed to [PID.Compute] on every call rather than stored,
// so a tuning interface can change them between ticks without touching
// controller state.
//
// The integral term accumulates without an anti-windup bound, and the
// first Compute call produces a derivative kick (prevErr starts at
// zero). Both match the reference rig; retuned gains assume them.
package control
