package control

type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

// PID holds the per-loop controller state: the accumulated integral and
// the previous tracking error. Compute mutates both once per call.
type PID struct {
	integral float64
	prevErr  float64
}

func NewPID() *PID {
	return &PID{}
}

// Compute advances the control law by one step of dt and returns the raw
// control output. dt must be positive; the caller owns that contract.
func (p *PID) Compute(g Gains, setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	return g.Kp*err + g.Ki*p.integral + g.Kd*derivative
}

// Reset clears integral and derivative state. It is never called
// automatically; setpoint changes keep the accumulated state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
}

// Integral exposes the accumulated integral term for status readouts.
func (p *PID) Integral() float64 {
	return p.integral
}
