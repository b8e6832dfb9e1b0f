// Package executor defines the interface of the flow execution driver and
// the terminal result of a run.
package executor

import (
	"context"
	"fmt"
	"time"
)

// Executor drives one flow tree through a complete run: reset the stores,
// set up the whole tree, execute the root until it is exhausted or a fatal
// error occurs, then always wrap up and clean up.
type Executor interface {
	Run(ctx context.Context) *Result
	// Stop requests a cooperative stop of the current run.
	Stop()
}

// Status is the terminal state of a run.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusStopped:
		return "stopped"
	default:
		return "succeeded"
	}
}

// Result is the single observable outcome of a run.
type Result struct {
	RunID    string
	Status   Status
	Err      error
	Message  string
	Duration time.Duration
}

// Error returns the run error, or nil when the run did not fail.
func (r *Result) Error() error {
	if r.Status != StatusFailed {
		return nil
	}
	return r.Err
}

func (r *Result) String() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}
