// Package plant provides the beam-and-ball plant behind the control
// loop's single step capability.
//
//   - [Simulated]: explicit Euler rigid-body model of the ball on a
//     tilted beam
//   - [Hardware]: bridge to a real rig over a [Bus], with a per-tick
//     deadline, a one-retry budget, and last-known-good degradation
//   - [SerialBus]: line-protocol Bus over a serial port
//
// The loop is generic over [Plant] and unaware of which variant it
// drives; a hardware deployment swaps the constructor and nothing else.
package plant
