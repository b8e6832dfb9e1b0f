package control

import (
	"context"
	"errors"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/callable"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// CallableActors holds actors that are not routed to but invoked by name.
// It is a standalone and must sit among the leading standalones of its
// parent.
type CallableActors struct {
	actor.Base
	children
}

func NewCallableActors() *CallableActors {
	c := &CallableActors{}
	c.owner = c
	return c
}

func (c *CallableActors) CallableScope() {}

func (c *CallableActors) SetUp(ctx context.Context) error { return setUpChildren(ctx, c) }

func (c *CallableActors) WrapUp(ctx context.Context) {
	for _, a := range c.list {
		callable.Exclusive(a, func() { actor.WrapUp(ctx, a) })
	}
}

func (c *CallableActors) CleanUp() { cleanUpChildren(c) }

// reference is the configuration and resolution state shared by the
// callable users.
type reference struct {
	ref *callable.Reference
}

func (r *reference) configure(o *options.Options, roles ...actor.Role) error {
	name, err := o.String("callable", "")
	if err != nil {
		return err
	}
	optional, err := o.Bool("optional", false)
	if err != nil {
		return err
	}
	r.ref = callable.NewReference(name, roles...)
	r.ref.Optional = optional
	return nil
}

func (r *reference) setUp(ctx context.Context, owner actor.Actor) error {
	if r.ref == nil {
		return errors.New("no callable actor configured")
	}
	r.ref.Reset()
	target, err := r.ref.Resolve(owner)
	if err != nil {
		return err
	}
	if target == nil {
		owner.Core().Logger(ctx).Warn("Optional callable actor not found.", "callable", r.ref.Name)
	}
	return nil
}

// target re-resolves the reference so structural changes are honored.
func (r *reference) target(owner actor.Actor) (actor.Actor, error) {
	return r.ref.Resolve(owner)
}

// release drops the cached callable target.
func (r *reference) release() {
	if r.ref != nil {
		r.ref.Reset()
	}
}

// Callable returns the name of the referenced actor.
func (r *reference) Callable() string {
	if r.ref == nil {
		return ""
	}
	return r.ref.Name
}

// CallableSink forwards its input to a callable sink.
type CallableSink struct {
	actor.Base
	actor.InputSlot
	reference
}

func NewCallableSink(name string) *CallableSink {
	c := &CallableSink{}
	c.ref = callable.NewReference(name, actor.RoleSink)
	return c
}

func (c *CallableSink) Configure(o *options.Options) error {
	return c.configure(o, actor.RoleSink)
}

func (c *CallableSink) Accepts() []token.Kind {
	if t, ok := c.ref.Target().(actor.InputConsumer); ok {
		return t.Accepts()
	}
	return nil
}

func (c *CallableSink) SetUp(ctx context.Context) error { return c.setUp(ctx, c) }

func (c *CallableSink) Execute(ctx context.Context) error {
	in := c.TakeInput()
	t, err := c.target(c)
	if err != nil || t == nil {
		return err
	}
	_, err = callable.Invoke(ctx, t, in)
	return err
}

func (c *CallableSink) CleanUp() {
	c.ClearInput()
	c.release()
}

// CallableSource emits whatever a callable source produces per execution.
type CallableSource struct {
	actor.Base
	actor.OutputQueue
	reference
}

func NewCallableSource(name string) *CallableSource {
	c := &CallableSource{}
	c.ref = callable.NewReference(name, actor.RoleSource)
	return c
}

func (c *CallableSource) Configure(o *options.Options) error {
	return c.configure(o, actor.RoleSource)
}

func (c *CallableSource) Generates() []token.Kind {
	if t, ok := c.ref.Target().(actor.OutputProducer); ok {
		return t.Generates()
	}
	return nil
}

func (c *CallableSource) SetUp(ctx context.Context) error { return c.setUp(ctx, c) }

func (c *CallableSource) Execute(ctx context.Context) error {
	t, err := c.target(c)
	if err != nil || t == nil {
		return err
	}
	out, err := callable.Invoke(ctx, t, nil)
	for _, tok := range out {
		c.Push(tok)
	}
	return err
}

func (c *CallableSource) CleanUp() {
	c.ClearOutput()
	c.release()
}

// CallableTransformer passes its input through a callable transformer.
type CallableTransformer struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	reference
}

func NewCallableTransformer(name string) *CallableTransformer {
	c := &CallableTransformer{}
	c.ref = callable.NewReference(name, actor.RoleTransformer)
	return c
}

func (c *CallableTransformer) Configure(o *options.Options) error {
	return c.configure(o, actor.RoleTransformer)
}

func (c *CallableTransformer) Accepts() []token.Kind {
	if t, ok := c.ref.Target().(actor.InputConsumer); ok {
		return t.Accepts()
	}
	return nil
}

func (c *CallableTransformer) Generates() []token.Kind {
	if t, ok := c.ref.Target().(actor.OutputProducer); ok {
		return t.Generates()
	}
	return nil
}

func (c *CallableTransformer) SetUp(ctx context.Context) error { return c.setUp(ctx, c) }

func (c *CallableTransformer) Execute(ctx context.Context) error {
	in := c.TakeInput()
	t, err := c.target(c)
	if err != nil {
		return err
	}
	if t == nil {
		c.Push(in)
		return nil
	}
	out, err := callable.Invoke(ctx, t, in)
	for _, tok := range out {
		c.Push(tok)
	}
	return err
}

func (c *CallableTransformer) CleanUp() {
	c.ClearInput()
	c.ClearOutput()
	c.release()
}
