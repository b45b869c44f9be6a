package plant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

// fakeBus scripts per-call failures and records commanded tilts. It also
// counts overlapping calls: a real serial bus has a single reader, so
// two exchanges on it at once would tear frames.
type fakeBus struct {
	state      State
	tilts      []float64
	writeFails int
	readFails  int
	readDelay  time.Duration

	inUse   atomic.Int32
	overlap atomic.Bool
}

func (b *fakeBus) enter() {
	if b.inUse.Add(1) > 1 {
		b.overlap.Store(true)
	}
}

func (b *fakeBus) exit() { b.inUse.Add(-1) }

func (b *fakeBus) WriteTilt(tilt float64) error {
	b.enter()
	defer b.exit()
	if b.writeFails > 0 {
		b.writeFails--
		return fmt.Errorf("bus write error")
	}
	b.tilts = append(b.tilts, tilt)
	return nil
}

func (b *fakeBus) ReadState() (State, error) {
	b.enter()
	defer b.exit()
	if b.readDelay > 0 {
		time.Sleep(b.readDelay)
	}
	if b.readFails > 0 {
		b.readFails--
		return State{}, fmt.Errorf("bus read error")
	}
	return b.state, nil
}

func TestHardwareStep(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.05, Velocity: -0.1}}
	h := NewHardware(bus, State{})

	st, err := h.Step(context.Background(), 0.2, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	if st != bus.state {
		t.Errorf("state = %+v, want %+v", st, bus.state)
	}
	if len(bus.tilts) != 1 || bus.tilts[0] != 0.2 {
		t.Errorf("commanded tilts = %v, want [0.2]", bus.tilts)
	}
}

func TestHardwareRetriesOnce(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.01}, writeFails: 1, readFails: 1}
	h := NewHardware(bus, State{})

	// One transient failure per operation is absorbed by the retry.
	st, err := h.Step(context.Background(), 0.1, 0.05)
	if err != nil {
		t.Fatalf("retry should have absorbed single failures: %v", err)
	}
	if st.Position != 0.01 {
		t.Errorf("position = %v, want 0.01", st.Position)
	}
}

func TestHardwareDegradedKeepsLastGood(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.07}}
	h := NewHardware(bus, State{})

	if _, err := h.Step(context.Background(), 0.1, 0.05); err != nil {
		t.Fatal(err)
	}

	bus.readFails = 2 // both attempts fail this tick
	st, err := h.Step(context.Background(), 0.1, 0.05)
	if !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading", err)
	}
	if st.Position != 0.07 {
		t.Errorf("degraded state = %+v, want last known good", st)
	}
}

func TestHardwareDeadline(t *testing.T) {
	bus := &fakeBus{state: State{}, readDelay: 100 * time.Millisecond}
	h := NewHardware(bus, State{Position: 0.03})

	start := time.Now()
	st, err := h.Step(context.Background(), 0.1, 0.01)
	if !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading on deadline miss", err)
	}
	if elapsed := time.Since(start); elapsed > 80*time.Millisecond {
		t.Errorf("step blocked %v past its 10ms deadline", elapsed)
	}
	if st.Position != 0.03 {
		t.Errorf("state = %+v, want last known good", st)
	}
}

// A slow exchange that outlives its tick keeps the bus to itself: later
// ticks degrade without issuing a second concurrent exchange, and once
// the stale exchange finishes its frame is adopted as the degraded
// reading.
func TestHardwareSerializesBusAfterDeadlineMiss(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.02}, readDelay: 50 * time.Millisecond}
	h := NewHardware(bus, State{Position: 0.01})

	// First tick misses its 10ms deadline; the exchange keeps running.
	if _, err := h.Step(context.Background(), 0.1, 0.01); !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading on deadline miss", err)
	}

	// Second tick finds the bus busy and degrades without touching it.
	st, err := h.Step(context.Background(), 0.2, 0.01)
	if !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading while bus busy", err)
	}
	if st.Position != 0.01 {
		t.Errorf("state = %+v, want last known good", st)
	}

	// A tick with room to wait drains the stale exchange and runs a
	// fresh one.
	st, err = h.Step(context.Background(), 0.3, 0.2)
	if err != nil {
		t.Fatalf("step after stale exchange finished: %v", err)
	}
	if st.Position != 0.02 {
		t.Errorf("state = %+v, want fresh frame", st)
	}

	if got := bus.tilts; len(got) != 2 || got[0] != 0.1 || got[1] != 0.3 {
		t.Errorf("commanded tilts = %v, want [0.1 0.3]", got)
	}
	if bus.overlap.Load() {
		t.Error("two exchanges used the bus concurrently")
	}
}

// An already-expired tick must not generate bus traffic at all.
func TestHardwareExpiredTickSkipsBus(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.05}}
	h := NewHardware(bus, State{Position: 0.01})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := h.Step(ctx, 0.1, 0.02)
	if !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading", err)
	}
	if st.Position != 0.01 {
		t.Errorf("state = %+v, want last known good", st)
	}

	if h.inflight != nil {
		<-h.inflight // let the abandoned exchange finish
	}
	if len(bus.tilts) != 0 {
		t.Errorf("commanded tilts = %v, want none on an expired tick", bus.tilts)
	}
}

func TestHardwareFaultBudget(t *testing.T) {
	bus := &fakeBus{readFails: 1000}
	h := NewHardware(bus, State{})

	var err error
	for i := 0; i < DefaultFaultBudget; i++ {
		_, err = h.Step(context.Background(), 0.1, 0.05)
	}
	if !errors.Is(err, ErrFault) {
		t.Fatalf("err after %d degraded ticks = %v, want ErrFault", DefaultFaultBudget, err)
	}
}

func TestHardwareFaultCounterResets(t *testing.T) {
	bus := &fakeBus{state: State{Position: 0.02}}
	h := NewHardware(bus, State{})

	for i := 0; i < 10; i++ {
		bus.readFails = 2 // one degraded tick
		if _, err := h.Step(context.Background(), 0.1, 0.05); !errors.Is(err, ErrDegradedReading) {
			t.Fatalf("cycle %d: err = %v, want ErrDegradedReading", i, err)
		}
		if _, err := h.Step(context.Background(), 0.1, 0.05); err != nil {
			t.Fatalf("cycle %d: healthy tick failed: %v", i, err)
		}
	}
}

func TestHardwareInvalidFrame(t *testing.T) {
	bus := &fakeBus{state: State{Position: math.NaN()}}
	h := NewHardware(bus, State{Position: 0.04})

	st, err := h.Step(context.Background(), 0.1, 0.05)
	if !errors.Is(err, ErrDegradedReading) {
		t.Fatalf("err = %v, want ErrDegradedReading for NaN frame", err)
	}
	if st.Position != 0.04 {
		t.Errorf("state = %+v, want last known good", st)
	}
}
