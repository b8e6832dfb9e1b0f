package actor

import (
	"errors"
	"fmt"
)

// ErrStopped is reported when a run ends because it was stopped rather than
// because it ran out of work.
var ErrStopped = errors.New("flow stopped")

// Phase names a lifecycle step.
type Phase int32

const (
	PhaseConstructed Phase = iota
	PhaseSetUp
	PhaseInput
	PhaseExecute
	PhaseWrapUp
	PhaseCleanUp
)

func (p Phase) String() string {
	switch p {
	case PhaseSetUp:
		return "set up"
	case PhaseInput:
		return "input"
	case PhaseExecute:
		return "execute"
	case PhaseWrapUp:
		return "wrap up"
	case PhaseCleanUp:
		return "clean up"
	default:
		return "constructed"
	}
}

// NodeError annotates an error with the full name of the actor it
// originated from.
type NodeError struct {
	Path  string
	Phase Phase
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// annotate wraps err in a NodeError for a unless it already carries the
// path of a deeper node.
func annotate(a Actor, phase Phase, err error) error {
	if err == nil {
		return nil
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{Path: a.Core().FullName(), Phase: phase, Err: err}
}
