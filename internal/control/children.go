package control

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

// children is the ordered child list shared by all composites. The owner
// must be set by the constructor of the embedding type.
type children struct {
	owner actor.Handler
	list  []actor.Actor
}

func (c *children) Size() int { return len(c.list) }

func (c *children) Get(i int) actor.Actor { return c.list[i] }

func (c *children) IndexOf(name string) int {
	return slices.IndexFunc(c.list, func(a actor.Actor) bool { return a.Core().Name() == name })
}

func (c *children) Add(a actor.Actor) error {
	return c.Insert(len(c.list), a)
}

func (c *children) Insert(i int, a actor.Actor) error {
	if i < 0 || i > len(c.list) {
		return fmt.Errorf("index %d out of range [0, %d]", i, len(c.list))
	}
	if err := c.checkName(a, -1); err != nil {
		return err
	}
	c.list = slices.Insert(c.list, i, a)
	actor.Attach(c.owner, a)
	return nil
}

func (c *children) Set(i int, a actor.Actor) error {
	if i < 0 || i >= len(c.list) {
		return fmt.Errorf("index %d out of range [0, %d)", i, len(c.list))
	}
	if err := c.checkName(a, i); err != nil {
		return err
	}
	old := c.list[i]
	c.list[i] = a
	old.Core().SetParent(nil)
	actor.Attach(c.owner, a)
	return nil
}

func (c *children) Remove(i int) (actor.Actor, error) {
	if i < 0 || i >= len(c.list) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(c.list))
	}
	a := c.list[i]
	c.list = slices.Delete(c.list, i, i+1)
	actor.Detach(c.owner, a)
	return a, nil
}

func (c *children) checkName(a actor.Actor, replacing int) error {
	name := a.Core().Name()
	if name == "" {
		return fmt.Errorf("cannot add unnamed actor to %s", c.owner.Core().FullName())
	}
	if j := c.IndexOf(name); j >= 0 && j != replacing {
		return fmt.Errorf("duplicate actor name %q in %s", name, c.owner.Core().FullName())
	}
	return nil
}

// active returns the indices of the children that are not skipped.
func (c *children) active() []int {
	var out []int
	for i, a := range c.list {
		if !a.Core().Skip() {
			out = append(out, i)
		}
	}
	return out
}

func setUpChildren(ctx context.Context, h actor.Handler) error {
	for i := 0; i < h.Size(); i++ {
		if err := actor.SetUp(ctx, h.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

// wrapUpChildren wraps up callable containers last, after the background
// producers among their siblings stopped calling into them.
func wrapUpChildren(ctx context.Context, h actor.Handler) {
	var callables []actor.Actor
	for i := 0; i < h.Size(); i++ {
		a := h.Get(i)
		if _, ok := a.(actor.CallableContainer); ok {
			callables = append(callables, a)
			continue
		}
		actor.WrapUp(ctx, a)
	}
	for _, a := range callables {
		actor.WrapUp(ctx, a)
	}
}

func cleanUpChildren(h actor.Handler) {
	ctx := context.Background()
	for i := 0; i < h.Size(); i++ {
		actor.CleanUp(ctx, h.Get(i))
	}
}

func finished(a actor.Actor) bool {
	f, ok := a.(actor.Finisher)
	return !ok || f.IsFinished()
}

// drive feeds tok to a single actor, executes it until it is finished and
// collects everything it emits. A skipped actor hands tok back unchanged.
func drive(ctx context.Context, a actor.Actor, tok *token.Token) ([]*token.Token, error) {
	if a.Core().Skip() {
		if tok == nil {
			return nil, nil
		}
		return []*token.Token{tok}, nil
	}
	if c, ok := a.(actor.InputConsumer); ok && tok != nil {
		if err := actor.Input(c, tok); err != nil {
			return nil, err
		}
	}
	var out []*token.Token
	for {
		if err := actor.Execute(ctx, a); err != nil {
			return out, err
		}
		if p, ok := a.(actor.OutputProducer); ok {
			for p.HasPendingOutput() {
				out = append(out, p.Output())
			}
		}
		if finished(a) || a.Core().IsStopped() || ctx.Err() != nil {
			return out, nil
		}
	}
}

// handle applies the run's error handling to err raised by a and reports
// whether the caller must stop and return err.
func handle(ctx context.Context, a actor.Actor, err error) bool {
	return a.Core().Env().HandleError(ctx, a, err)
}

// firstAccepts returns the input kinds of the first routed child of h.
func firstAccepts(h actor.Handler) []token.Kind {
	for i := 0; i < h.Size(); i++ {
		a := h.Get(i)
		if a.Core().Skip() || actor.RoleOf(a) == actor.RoleStandalone {
			continue
		}
		if c, ok := a.(actor.InputConsumer); ok {
			return c.Accepts()
		}
		return nil
	}
	return nil
}

// lastGenerates returns the output kinds of the last active child of h.
func lastGenerates(h actor.Handler) []token.Kind {
	for i := h.Size() - 1; i >= 0; i-- {
		a := h.Get(i)
		if a.Core().Skip() {
			continue
		}
		if p, ok := a.(actor.OutputProducer); ok {
			return p.Generates()
		}
		return nil
	}
	return nil
}
