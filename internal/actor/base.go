package actor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/token"
)

// Base carries the state every actor shares. Embed it by value and the
// promoted methods satisfy the bookkeeping half of Actor.
type Base struct {
	name            string
	parent          Handler
	skip            bool
	stopFlowOnError bool
	annotations     string

	env     *Env
	phase   atomic.Int32
	stopped atomic.Bool

	// version is only meaningful on the root of a tree.
	version atomic.Uint64
	callMu  sync.Mutex
}

func (b *Base) Core() *Base { return b }

func (b *Base) Name() string        { return b.name }
func (b *Base) SetName(name string) { b.name = name }

// Parent returns the enclosing handler, or nil for a root.
func (b *Base) Parent() Handler { return b.parent }

// SetParent is called by handlers when they adopt a child.
func (b *Base) SetParent(h Handler) { b.parent = h }

// Skip reports whether the actor is disabled. A disabled actor is never set
// up or executed and forwards its input unchanged.
func (b *Base) Skip() bool        { return b.skip }
func (b *Base) SetSkip(skip bool) { b.skip = skip }

func (b *Base) StopFlowOnError() bool     { return b.stopFlowOnError }
func (b *Base) SetStopFlowOnError(v bool) { b.stopFlowOnError = v }

func (b *Base) Annotations() string     { return b.annotations }
func (b *Base) SetAnnotations(s string) { b.annotations = s }

// Env returns the run environment. An actor used outside an executor gets
// a private environment on first access.
func (b *Base) Env() *Env {
	if b.env == nil {
		b.env = NewEnv()
	}
	return b.env
}

func (b *Base) SetEnv(env *Env) { b.env = env }

// Phase returns the last lifecycle step the actor entered.
func (b *Base) Phase() Phase { return Phase(b.phase.Load()) }

// Stop flags the actor as stopped. Stopping the run through Env.Stop
// reaches every actor sharing the environment.
func (b *Base) Stop() { b.stopped.Store(true) }

func (b *Base) IsStopped() bool {
	return b.stopped.Load() || (b.env != nil && b.env.Stopped())
}

// FullName is the dot separated path from the root. Dots inside names are
// escaped with a backslash.
func (b *Base) FullName() string {
	name := EscapeName(b.name)
	if b.parent == nil {
		return name
	}
	return b.parent.Core().FullName() + "." + name
}

// Logger returns the context logger tagged with the actor's full name.
func (b *Base) Logger(ctx context.Context) *slog.Logger {
	return ctxlog.FromContext(ctx).With("actor", b.FullName())
}

// NewToken wraps payload in a token stamped with the actor's full name.
func (b *Base) NewToken(payload any) *token.Token {
	return token.NewFrom(payload, b.FullName())
}

// Expand substitutes variables, then storage placeholders, in raw using
// the current environment.
func (b *Base) Expand(raw string) string {
	env := b.Env()
	out := env.Variables.Expand(raw)
	if env.Storage != nil {
		out = env.Storage.Expand(out)
	}
	return out
}

// CallLock returns the mutex serializing out-of-band invocations of the
// actor.
func (b *Base) CallLock() *sync.Mutex { return &b.callMu }

func (b *Base) SetUp(context.Context) error   { return nil }
func (b *Base) Execute(context.Context) error { return nil }
func (b *Base) WrapUp(context.Context)        {}
func (b *Base) CleanUp()                      {}

// EscapeName escapes the path separator inside a single actor name.
func EscapeName(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}
