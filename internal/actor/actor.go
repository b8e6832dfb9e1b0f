package actor

import (
	"context"

	"github.com/vk/actorgrid/internal/token"
)

// Actor is the lifecycle contract of a flow node.
type Actor interface {
	// Core exposes the embedded Base.
	Core() *Base
	// SetUp validates the configuration and opens run-scoped resources.
	SetUp(ctx context.Context) error
	// Execute performs one unit of work.
	Execute(ctx context.Context) error
	// WrapUp finishes the run. Failures are logged by the implementation.
	WrapUp(ctx context.Context)
	// CleanUp releases everything. It must be safe to call repeatedly.
	CleanUp()
}

// InputConsumer is an actor that accepts tokens.
type InputConsumer interface {
	Actor
	// Accepts lists the payload kinds the actor consumes. An empty list
	// accepts anything.
	Accepts() []token.Kind
	// Input hands the actor the token to process on the next Execute.
	Input(t *token.Token)
}

// OutputProducer is an actor that emits tokens.
type OutputProducer interface {
	Actor
	// Generates lists the payload kinds the actor emits. An empty list
	// means the kind is only known at runtime.
	Generates() []token.Kind
	HasPendingOutput() bool
	// Output removes and returns the next pending token, or nil.
	Output() *token.Token
}

// Finisher is implemented by actors that need further Execute calls before
// they are exhausted. Actors without it are finished after every Execute.
type Finisher interface {
	IsFinished() bool
}

// Handler is a composite actor owning an ordered list of children.
type Handler interface {
	Actor
	Size() int
	Get(i int) Actor
	// IndexOf returns the position of the child with the given name, or -1.
	IndexOf(name string) int
}

// MutableHandler is a Handler whose children can be changed after
// construction. Every mutation bumps the structural version of the tree.
type MutableHandler interface {
	Handler
	Add(a Actor) error
	Insert(i int, a Actor) error
	Set(i int, a Actor) error
	Remove(i int) (Actor, error)
}

// CallableContainer marks a handler whose children are not routed to but
// can be referenced by name from anywhere below the container's parent.
type CallableContainer interface {
	Handler
	CallableScope()
}

// Role classifies an actor by the token interfaces it implements.
type Role int

const (
	RoleStandalone Role = iota
	RoleSource
	RoleTransformer
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleTransformer:
		return "transformer"
	case RoleSink:
		return "sink"
	default:
		return "standalone"
	}
}

// RoleOf derives the role of a.
func RoleOf(a Actor) Role {
	_, in := a.(InputConsumer)
	_, out := a.(OutputProducer)
	switch {
	case in && out:
		return RoleTransformer
	case out:
		return RoleSource
	case in:
		return RoleSink
	default:
		return RoleStandalone
	}
}
