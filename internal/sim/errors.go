package sim

import (
	"errors"
	"fmt"
)

// ErrStopped indicates a tick was requested after the loop reached its
// terminal state.
var ErrStopped = errors.New("sim: loop stopped")

// TickError wraps a plant error with loop context.
type TickError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
