package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/beamctl/internal/control"
	"github.com/san-kum/beamctl/internal/history"
	"github.com/san-kum/beamctl/internal/params"
	"github.com/san-kum/beamctl/internal/plant"
)

type Config struct {
	Dt         float64
	Window     float64
	TiltMinDeg float64
	TiltMaxDeg float64
}

func DefaultConfig() Config {
	return Config{
		Dt:         0.02,
		Window:     12.0,
		TiltMinDeg: control.DefaultTiltMinDeg,
		TiltMaxDeg: control.DefaultTiltMaxDeg,
	}
}

// Snapshot is the live status readout after a tick.
type Snapshot struct {
	T        float64
	Setpoint float64
	Position float64
	Velocity float64
	TiltDeg  float64
	Kp       float64
	Ki       float64
	Kd       float64
}

// Observer is notified after every completed tick. Display and telemetry
// collaborators hang off this hook; the loop itself has no output
// surface.
type Observer interface {
	OnTick(snap Snapshot)
}

// Loop owns the whole simulation core: controller state, plant, clock
// and history. It is driven from a single goroutine; only the parameter
// store is shared with other goroutines.
type Loop struct {
	cfg   Config
	plant plant.Plant
	pid   *control.PID
	store *params.Store
	hist  *history.Buffer

	observers []Observer
	onFault   func(error)

	t       float64
	step    int
	state   plant.State
	tiltDeg float64
	stopped bool
}

func New(p plant.Plant, store *params.Store, initial plant.State, cfg Config) (*Loop, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %f", cfg.Window)
	}
	return &Loop{
		cfg:   cfg,
		plant: p,
		pid:   control.NewPID(),
		store: store,
		hist:  history.New(cfg.Window, 1/cfg.Dt),
		state: initial,
	}, nil
}

func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// OnFault installs a handler for degraded-tick reports. Run and RunSteps
// keep going after a degraded tick; without a handler the report is
// dropped.
func (l *Loop) OnFault(fn func(error)) { l.onFault = fn }

// Tick runs one read-compute-write cycle. A degraded plant reading still
// completes the tick on the last-known-good state and returns an error
// satisfying errors.Is(err, plant.ErrDegradedReading); a fatal fault
// commands neutral tilt, stops the loop, and returns the fault.
func (l *Loop) Tick(ctx context.Context) error {
	if l.stopped {
		return ErrStopped
	}

	p := l.store.Snapshot()

	out := l.pid.Compute(control.Gains{Kp: p.Kp, Ki: p.Ki, Kd: p.Kd}, p.Setpoint, l.state.Position, l.cfg.Dt)
	tiltDeg := control.Clamp(out, l.cfg.TiltMinDeg, l.cfg.TiltMaxDeg)

	st, err := l.plant.Step(ctx, control.Radians(tiltDeg), l.cfg.Dt)
	if err != nil && !errors.Is(err, plant.ErrDegradedReading) {
		l.failSafe()
		l.stopped = true
		return &TickError{Step: l.step, Time: l.t, Wrapped: err}
	}

	l.state = st
	l.tiltDeg = tiltDeg
	l.t += l.cfg.Dt
	l.step++

	l.hist.Append(history.Sample{T: l.t, Setpoint: p.Setpoint, Position: l.state.Position})

	snap := l.snapshot(p)
	for _, o := range l.observers {
		o.OnTick(snap)
	}

	if err != nil {
		return &TickError{Step: l.step - 1, Time: l.t - l.cfg.Dt, Wrapped: err}
	}
	return nil
}

// Run drives the loop at real-time cadence until the context is
// canceled or the plant faults fatally. Cancellation finishes the
// in-flight tick before halting.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(l.cfg.Dt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.stopped = true
			return ctx.Err()
		case <-ticker.C:
			if err := l.tickReporting(ctx); err != nil {
				return err
			}
		}
	}
}

// RunSteps drives n ticks as fast as the plant allows, for headless runs
// and tests.
func (l *Loop) RunSteps(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			l.stopped = true
			return ctx.Err()
		default:
		}
		if err := l.tickReporting(ctx); err != nil {
			return err
		}
	}
	return nil
}

// tickReporting routes degraded ticks to the fault handler and keeps
// going; anything else stops the run.
func (l *Loop) tickReporting(ctx context.Context) error {
	err := l.Tick(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, plant.ErrDegradedReading) {
		if l.onFault != nil {
			l.onFault(err)
		}
		return nil
	}
	return err
}

// failSafe commands neutral tilt before the loop halts. Best effort: the
// plant may already be unreachable.
func (l *Loop) failSafe() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(l.cfg.Dt*float64(time.Second)))
	defer cancel()
	l.plant.Step(ctx, 0, l.cfg.Dt)
	l.tiltDeg = 0
}

// Snapshot is the live status readout of the most recent tick.
func (l *Loop) Snapshot() Snapshot {
	return l.snapshot(l.store.Snapshot())
}

func (l *Loop) snapshot(p params.Parameters) Snapshot {
	return Snapshot{
		T:        l.t,
		Setpoint: p.Setpoint,
		Position: l.state.Position,
		Velocity: l.state.Velocity,
		TiltDeg:  l.tiltDeg,
		Kp:       p.Kp,
		Ki:       p.Ki,
		Kd:       p.Kd,
	}
}

// Visible returns the history samples inside the trailing window.
func (l *Loop) Visible(window float64) []history.Sample {
	return l.hist.Visible(window)
}

// Stopped reports whether the loop reached its terminal state.
func (l *Loop) Stopped() bool { return l.stopped }

// ResetController clears the PID integral and derivative state. Exposed
// for explicit operator use only; nothing triggers it automatically.
func (l *Loop) ResetController() { l.pid.Reset() }
