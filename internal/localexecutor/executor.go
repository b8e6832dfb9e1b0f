// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface.
package localexecutor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/executor"
)

// Option configures an Executor.
type Option func(*Executor)

// WithVariables binds the initial variables of every run.
func WithVariables(vars map[string]string) Option {
	return func(e *Executor) { e.bindings = vars }
}

// WithListener installs an execution listener for every run.
func WithListener(l actor.Listener) Option {
	return func(e *Executor) { e.listener = l }
}

// WithEnv makes the executor use env instead of a fresh environment.
func WithEnv(env *actor.Env) Option {
	return func(e *Executor) { e.env = env }
}

// Executor runs a flow tree in the calling goroutine.
type Executor struct {
	root     actor.Actor
	env      *actor.Env
	bindings map[string]string
	listener actor.Listener

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ executor.Executor = (*Executor)(nil)

// New creates an executor for the tree rooted at root.
func New(root actor.Actor, opts ...Option) *Executor {
	e := &Executor{root: root}
	for _, opt := range opts {
		opt(e)
	}
	if e.env == nil {
		e.env = actor.NewEnv()
	}
	return e
}

// Env returns the run environment shared by the whole tree.
func (e *Executor) Env() *actor.Env { return e.env }

// Stop requests a cooperative stop: actors see the stop flag on their next
// check and blocking work is released through the run context.
func (e *Executor) Stop() {
	e.env.Stop("stopped by request")
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Executor) Run(ctx context.Context) *executor.Result {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	e.env.Reset(e.bindings)
	e.env.SetListener(e.listener)
	actor.SetEnv(e.root, e.env)

	logger.Info("Starting flow.", "flow", e.root.Core().FullName())
	err := e.execute(ctx)

	logger.Debug("Wrapping up flow.")
	actor.WrapUp(ctx, e.root)
	actor.CleanUp(ctx, e.root)

	res := e.result(ctx, err)
	res.RunID = runID
	res.Duration = time.Since(start)

	switch res.Status {
	case executor.StatusFailed:
		logger.Error("Flow failed.", "error", res.Err, "duration", res.Duration)
	case executor.StatusStopped:
		logger.Warn("Flow stopped.", "message", res.Message, "duration", res.Duration)
	default:
		logger.Info("Flow finished.", "duration", res.Duration)
	}
	return res
}

func (e *Executor) execute(ctx context.Context) error {
	if err := actor.SetUp(ctx, e.root); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Flow set up.")

	for {
		if err := actor.Execute(ctx, e.root); err != nil {
			return err
		}
		f, ok := e.root.(actor.Finisher)
		if !ok || f.IsFinished() || e.root.Core().IsStopped() || ctx.Err() != nil {
			return nil
		}
	}
}

func (e *Executor) result(ctx context.Context, err error) *executor.Result {
	if first := e.env.Err(); first != nil {
		err = first
	}
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		return &executor.Result{Status: executor.StatusFailed, Err: err, Message: err.Error()}
	case e.env.Stopped():
		return &executor.Result{Status: executor.StatusStopped, Err: actor.ErrStopped, Message: e.env.StopReason()}
	case ctx.Err() != nil || err != nil:
		msg := context.Canceled.Error()
		if cause := context.Cause(ctx); cause != nil {
			msg = cause.Error()
		}
		return &executor.Result{Status: executor.StatusStopped, Err: actor.ErrStopped, Message: msg}
	}
	return &executor.Result{Status: executor.StatusSucceeded}
}
