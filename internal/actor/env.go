package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/actorgrid/internal/storage"
	"github.com/vk/actorgrid/internal/variables"
)

// ErrorHandling decides which execution errors stop a run.
type ErrorHandling int

const (
	// AlwaysStop stops the run on any execution error.
	AlwaysStop ErrorHandling = iota
	// ActorsDecide stops the run only for actors flagged with
	// stop_flow_on_error; other failures drop the offending token.
	ActorsDecide
)

func (m ErrorHandling) String() string {
	if m == ActorsDecide {
		return "actors_decide"
	}
	return "always_stop"
}

// ParseErrorHandling parses the configuration spelling of a mode. The empty
// string selects AlwaysStop.
func ParseErrorHandling(s string) (ErrorHandling, error) {
	switch s {
	case "", "always_stop":
		return AlwaysStop, nil
	case "actors_decide":
		return ActorsDecide, nil
	}
	return AlwaysStop, fmt.Errorf("unknown error handling mode %q, expected always_stop or actors_decide", s)
}

// Listener observes actor executions.
type Listener interface {
	PreExecute(ctx context.Context, a Actor)
	PostExecute(ctx context.Context, a Actor, elapsed time.Duration, err error)
}

// run is the state shared by every Env of one run, local scopes included.
type run struct {
	mu       sync.Mutex
	stopped  bool
	err      error
	reason   string
	mode     ErrorHandling
	listener Listener
}

// guard catches fatal errors of a subtree instead of failing the run.
type guard struct {
	mu  sync.Mutex
	err error
}

// Env is the run environment an actor sees: the variable and storage scopes
// plus the run-wide stop state.
type Env struct {
	Variables *variables.Store
	Storage   *storage.Storage
	run       *run
	guard     *guard
}

func NewEnv() *Env {
	return &Env{
		Variables: variables.New(),
		Storage:   storage.New(),
		run:       &run{},
	}
}

// Scoped returns an environment with its own stores that shares the stop
// state, error handling mode and listener of e.
func (e *Env) Scoped(vars *variables.Store, store *storage.Storage) *Env {
	return &Env{Variables: vars, Storage: store, run: e.run, guard: e.guard}
}

// Guarded returns an environment sharing everything with e except that
// fatal errors are caught: Fail records the error, stops only the actors
// using the guarded environment and leaves the run alive. Caught and
// Release inspect and clear the caught error.
func (e *Env) Guarded() *Env {
	return &Env{Variables: e.Variables, Storage: e.Storage, run: e.run, guard: &guard{}}
}

// Caught returns the error caught by a guarded environment.
func (e *Env) Caught() error {
	if e.guard == nil {
		return nil
	}
	e.guard.mu.Lock()
	defer e.guard.mu.Unlock()
	return e.guard.err
}

// Release clears the caught error so the guarded actors can run again.
func (e *Env) Release() {
	if e.guard == nil {
		return
	}
	e.guard.mu.Lock()
	defer e.guard.mu.Unlock()
	e.guard.err = nil
}

// Reset clears the stores and the stop state and binds the initial
// variables. It is called once at the start of every run.
func (e *Env) Reset(bindings map[string]string) {
	e.Variables.Reset(bindings)
	e.Storage.Clear()
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	e.run.stopped = false
	e.run.err = nil
	e.run.reason = ""
}

func (e *Env) SetListener(l Listener) {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	e.run.listener = l
}

func (e *Env) Listener() Listener {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	return e.run.listener
}

func (e *Env) SetErrorHandling(m ErrorHandling) {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	e.run.mode = m
}

func (e *Env) ErrorHandling() ErrorHandling {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	return e.run.mode
}

// Fail stops the run with err. Only the first error is kept.
func (e *Env) Fail(err error) {
	if e.guard != nil {
		e.guard.mu.Lock()
		if e.guard.err == nil {
			e.guard.err = err
		}
		e.guard.mu.Unlock()
		return
	}
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	if e.run.err == nil {
		e.run.err = err
	}
	e.run.stopped = true
}

// Stop stops the run without failing it.
func (e *Env) Stop(reason string) {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	if !e.run.stopped {
		e.run.reason = reason
	}
	e.run.stopped = true
}

func (e *Env) Stopped() bool {
	if e.Caught() != nil {
		return true
	}
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	return e.run.stopped
}

// Err returns the first fatal error of the run.
func (e *Env) Err() error {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	return e.run.err
}

// StopReason returns the message given to Stop, if any.
func (e *Env) StopReason() string {
	e.run.mu.Lock()
	defer e.run.mu.Unlock()
	return e.run.reason
}

// HandleError applies the error handling mode to an execution error of a
// and reports whether routing has to stop.
func (e *Env) HandleError(ctx context.Context, a Actor, err error) bool {
	if e.Stopped() {
		return true
	}
	if e.guard != nil || e.ErrorHandling() == AlwaysStop || a.Core().StopFlowOnError() {
		e.Fail(err)
		return true
	}
	a.Core().Logger(ctx).Warn("Actor failed, dropping token.", "error", err)
	return false
}
