package main

import (
	"fmt"
	"io"

	"github.com/san-kum/beamctl/internal/sim"
)

// statusPrinter prints one status line every interval of simulated time.
type statusPrinter struct {
	w     io.Writer
	every int
	n     int
}

func newStatusPrinter(w io.Writer, interval, dt float64) *statusPrinter {
	every := int(interval / dt)
	if every < 1 {
		every = 1
	}
	return &statusPrinter{w: w, every: every}
}

func (p *statusPrinter) OnTick(s sim.Snapshot) {
	p.n++
	if p.n%p.every != 0 {
		return
	}
	fmt.Fprintf(p.w, "t=%7.2fs  sp=%+.3f  pos=%+.3f  tilt=%+5.1f°  Kp=%5.1f Ki=%4.2f Kd=%4.1f\n",
		s.T, s.Setpoint, s.Position, s.TiltDeg, s.Kp, s.Ki, s.Kd)
}
