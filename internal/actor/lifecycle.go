package actor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vk/actorgrid/internal/token"
)

// SetUp runs a.SetUp. Skipped actors are left untouched.
func SetUp(ctx context.Context, a Actor) (err error) {
	b := a.Core()
	if b.Skip() {
		return nil
	}
	b.stopped.Store(false)
	b.phase.Store(int32(PhaseSetUp))
	defer recoverPanic(ctx, a, PhaseSetUp, &err)
	return annotate(a, PhaseSetUp, a.SetUp(ctx))
}

// Execute runs a.Execute, notifying the environment's listener. A stopped
// actor is not executed.
func Execute(ctx context.Context, a Actor) (err error) {
	b := a.Core()
	if b.Skip() || b.IsStopped() {
		return nil
	}
	b.phase.Store(int32(PhaseExecute))

	l := b.Env().Listener()
	start := time.Now()
	if l != nil {
		l.PreExecute(ctx, a)
		defer func() { l.PostExecute(ctx, a, time.Since(start), err) }()
	}
	defer recoverPanic(ctx, a, PhaseExecute, &err)
	return annotate(a, PhaseExecute, a.Execute(ctx))
}

// Input checks t against the kinds c accepts and hands it over.
func Input(c InputConsumer, t *token.Token) error {
	if err := token.Check(t.Payload(), c.Accepts()); err != nil {
		return annotate(c, PhaseInput, err)
	}
	c.Input(t)
	return nil
}

// WrapUp runs a.WrapUp. Panics are logged and swallowed.
func WrapUp(ctx context.Context, a Actor) {
	b := a.Core()
	if b.Skip() {
		return
	}
	b.phase.Store(int32(PhaseWrapUp))
	var err error
	defer func() {
		if err != nil {
			b.Logger(ctx).Warn("Wrap up failed.", "error", err)
		}
	}()
	defer recoverPanic(ctx, a, PhaseWrapUp, &err)
	a.WrapUp(ctx)
}

// CleanUp runs a.CleanUp. Panics are logged and swallowed.
func CleanUp(ctx context.Context, a Actor) {
	b := a.Core()
	b.phase.Store(int32(PhaseCleanUp))
	var err error
	defer func() {
		if err != nil {
			b.Logger(ctx).Warn("Clean up failed.", "error", err)
		}
	}()
	defer recoverPanic(ctx, a, PhaseCleanUp, &err)
	a.CleanUp()
}

func recoverPanic(ctx context.Context, a Actor, phase Phase, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	a.Core().Logger(ctx).Error("Actor panicked.",
		"phase", phase.String(),
		"panic", r,
		"stack", string(debug.Stack()),
	)
	*errp = &NodeError{Path: a.Core().FullName(), Phase: phase, Err: fmt.Errorf("panic: %v", r)}
}
