package params

import (
	"errors"
	"sync"
	"testing"
)

func TestStoreSnapshot(t *testing.T) {
	s, err := NewStore(Parameters{Setpoint: 0.10, Kp: 22.0, Ki: 1.2, Kd: 4.5})
	if err != nil {
		t.Fatal(err)
	}

	p := s.Snapshot()
	if p.Setpoint != 0.10 || p.Kp != 22.0 || p.Ki != 1.2 || p.Kd != 4.5 {
		t.Errorf("snapshot = %+v", p)
	}
}

func TestStoreRejectsOutOfRange(t *testing.T) {
	tests := []Parameters{
		{Setpoint: 0.24},
		{Setpoint: -0.24},
		{Kp: 101},
		{Kp: -1},
		{Ki: 10.5},
		{Kd: 20.1},
	}
	s, _ := NewStore(Parameters{})
	for _, p := range tests {
		if err := s.Set(p); !errors.Is(err, ErrParameterBounds) {
			t.Errorf("Set(%+v) err = %v, want ErrParameterBounds", p, err)
		}
	}

	// Rejected writes leave the stored tuple untouched.
	if got := s.Snapshot(); got != (Parameters{}) {
		t.Errorf("snapshot after rejected writes = %+v, want zero tuple", got)
	}
}

func TestNewStoreRejectsOutOfRange(t *testing.T) {
	if _, err := NewStore(Parameters{Kp: 200}); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("err = %v, want ErrParameterBounds", err)
	}
}

func TestClamped(t *testing.T) {
	p := Parameters{Setpoint: 1.0, Kp: -5, Ki: 99, Kd: 7}.Clamped()
	want := Parameters{Setpoint: MaxSetpoint, Kp: MinKp, Ki: MaxKi, Kd: 7}
	if p != want {
		t.Errorf("clamped = %+v, want %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("clamped tuple failed validation: %v", err)
	}
}

// A racing writer must never let a reader observe a tuple mixing fields
// from two different writes. Every written tuple encodes one value k by
// exact power-of-two multiples, so any torn read breaks the relations.
func TestStoreSnapshotAtomicity(t *testing.T) {
	s, err := NewStore(Parameters{})
	if err != nil {
		t.Fatal(err)
	}

	const writes = 20000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			k := float64(i%16) * 0.5 // k in [0, 7.5]
			if err := s.Set(Parameters{
				Setpoint: k / 64, // <= 0.1172
				Kp:       4 * k,  // <= 30
				Ki:       k,      // <= 7.5
				Kd:       2 * k,  // <= 15
			}); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := 0; i < writes; i++ {
		p := s.Snapshot()
		k := p.Ki
		if p.Setpoint != k/64 || p.Kp != 4*k || p.Kd != 2*k {
			t.Fatalf("torn read: %+v", p)
		}
	}
	wg.Wait()
}
