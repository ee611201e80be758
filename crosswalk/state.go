package crosswalk

import (
	"errors"
	"fmt"

	"github.com/c360studio/geocrosswalk/export"
)

// ErrIllegalTransition is returned when a run is moved to a state its
// current state cannot reach.
var ErrIllegalTransition = errors.New("illegal run state transition")

// State is the phase of a run.
type State string

const (
	// StateIdle is a run that has not started.
	StateIdle State = "idle"
	// StateExtracting is a run whose adapter is reading the document.
	StateExtracting State = "extracting"
	// StateNormalizing is a run assembling and validating the record.
	StateNormalizing State = "normalizing"
	// StateExporting is a run serializing the sealed record.
	StateExporting State = "exporting"
	// StateDone is a run that produced every requested document.
	StateDone State = "done"
	// StateFailed is a run that stopped on a fatal error.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransitionTo returns true if the state can transition to the target
// state. Runs move forward one phase at a time and may fail from any
// non-terminal phase.
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateIdle:
		return target == StateExtracting || target == StateFailed
	case StateExtracting:
		return target == StateNormalizing || target == StateFailed
	case StateNormalizing:
		return target == StateExporting || target == StateFailed
	case StateExporting:
		return target == StateDone || target == StateFailed
	default:
		return false
	}
}

func (r *Result) advance(to State) error {
	if !r.State.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, r.State, to)
	}
	r.State = to
	return nil
}

// reject fails a finished run after the fact, dropping its documents. A
// batch rejects runs whose record another input already produced.
func (r *Result) reject(errs ...error) error {
	r.State = StateFailed
	r.Errors = append(r.Errors, errs...)
	r.Documents = make(map[string]export.Document)
	r.Order = nil
	return r.Err()
}
