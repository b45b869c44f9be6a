package plant

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bus is the I/O contract a hardware rig exposes: write the commanded
// tilt, read back position and velocity. Both calls may block.
type Bus interface {
	WriteTilt(tiltRadians float64) error
	ReadState() (State, error)
}

// DefaultFaultBudget is the number of consecutive degraded ticks allowed
// before the bridge reports a fatal fault.
const DefaultFaultBudget = 3

// Hardware drives a real rig through a Bus under the loop's tick
// deadline. Each tick the commanded tilt is written and the sensor state
// read back; each bus operation is retried at most once. A tick that
// misses its deadline or exhausts the retry degrades to the last known
// good state. Consecutive degraded ticks beyond FaultBudget become a
// fatal fault.
//
// The Bus is owned by at most one exchange at a time: an exchange that
// outlives its deadline keeps the bus, and later ticks degrade without
// touching it until that exchange finishes.
type Hardware struct {
	bus         Bus
	FaultBudget int

	last     State
	faults   int
	inflight chan busReply
}

type busReply struct {
	st  State
	err error
}

func NewHardware(bus Bus, initial State) *Hardware {
	return &Hardware{
		bus:         bus,
		FaultBudget: DefaultFaultBudget,
		last:        initial,
	}
}

func (h *Hardware) Step(ctx context.Context, tiltRadians, dt float64) (State, error) {
	deadline := time.Duration(dt * float64(time.Second))
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	// An exchange that missed an earlier deadline may still own the
	// bus. Nothing else may touch the bus until it finishes; its late
	// frame is still the freshest reading available.
	if h.inflight != nil {
		select {
		case r := <-h.inflight:
			h.inflight = nil
			if r.err == nil && r.st.IsValid() {
				h.last = r.st
			}
		case <-ctx.Done():
			return h.degraded(errors.New("bus busy with a previous exchange"))
		}
	}

	done := make(chan busReply, 1)
	go func() {
		st, err := h.exchange(ctx, tiltRadians)
		done <- busReply{st, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return h.degraded(r.err)
		}
		if !r.st.IsValid() {
			return h.degraded(ErrInvalidState)
		}
		h.faults = 0
		h.last = r.st
		return r.st, nil
	case <-ctx.Done():
		h.inflight = done
		return h.degraded(fmt.Errorf("deadline %v exceeded", deadline))
	}
}

// exchange performs one write/read round trip, retrying each operation
// once while the deadline allows.
func (h *Hardware) exchange(ctx context.Context, tiltRadians float64) (State, error) {
	if err := h.retryOnce(ctx, func() error { return h.bus.WriteTilt(tiltRadians) }); err != nil {
		return State{}, fmt.Errorf("write tilt: %w", err)
	}

	var st State
	err := h.retryOnce(ctx, func() error {
		var rerr error
		st, rerr = h.bus.ReadState()
		return rerr
	})
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}
	return st, nil
}

func (h *Hardware) retryOnce(ctx context.Context, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := op()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return op()
}

func (h *Hardware) degraded(cause error) (State, error) {
	h.faults++
	if h.faults >= h.FaultBudget {
		return h.last, fmt.Errorf("%w after %d consecutive degraded ticks: %v", ErrFault, h.faults, cause)
	}
	return h.last, fmt.Errorf("%w: %v", ErrDegradedReading, cause)
}
