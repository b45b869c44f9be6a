// Package sim orchestrates the fixed-timestep ball-and-beam control
// loop: snapshot parameters, run the PID law, clamp to actuator limits,
// step the plant, record a history sample, advance the clock.
//
// The loop has two states, Running and Stopped. Stopped is terminal and
// is entered only on context cancellation or a fatal plant fault; a
// simulated plant never self-terminates.
//
// # Timing
//
// The default cadence is dt = 0.02s (50 Hz). The reference gains were
// tuned at that rate: changing Dt without retuning Kp/Ki/Kd changes
// closed-loop behavior, because the integral and derivative terms scale
// with the step.
package sim
