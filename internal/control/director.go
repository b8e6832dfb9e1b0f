package control

import (
	"context"
	"fmt"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

// Director routes tokens through the children of a handler.
//
// Leading standalone children are executed first. Routing then proceeds
// depth-first with a single token in flight: the output of child i is fed
// to child i+1 before anything else happens. Producers holding more than
// one token are pushed on a pending stack and revisited, most recent first,
// once the current token has left the pipeline. Unfinished children are
// executed again until every child is exhausted.
type Director struct {
	owner  actor.Handler
	record bool
	output []*token.Token
}

// NewDirector returns a director for owner. When record is set, tokens
// emitted by the last child are kept and returned by Output.
func NewDirector(owner actor.Handler, record bool) *Director {
	return &Director{owner: owner, record: record}
}

// Output returns and clears the recorded tokens.
func (d *Director) Output() []*token.Token {
	out := d.output
	d.output = nil
	return out
}

// Check validates the arrangement of the children: standalones only at the
// front, every routed child able to take the token of its predecessor and
// declared kinds compatible. withInput states whether the first routed
// child will be handed an input token.
func (d *Director) Check(withInput bool) error {
	var prev actor.Actor
	for i := 0; i < d.owner.Size(); i++ {
		a := d.owner.Get(i)
		if a.Core().Skip() {
			continue
		}
		role := actor.RoleOf(a)
		name := a.Core().Name()

		if prev == nil {
			if role == actor.RoleStandalone {
				continue
			}
			consumer := role == actor.RoleSink || role == actor.RoleTransformer
			if withInput && !consumer {
				return fmt.Errorf("first actor %q is a %s and cannot take input", name, role)
			}
			if !withInput && consumer {
				return fmt.Errorf("first actor %q is a %s and would never receive input", name, role)
			}
			prev = a
			continue
		}

		p, ok := prev.(actor.OutputProducer)
		if !ok {
			return fmt.Errorf("actor %q follows %s %q, which produces no output", name, actor.RoleOf(prev), prev.Core().Name())
		}
		c, ok := a.(actor.InputConsumer)
		if !ok {
			return fmt.Errorf("actor %q is a %s and cannot take the output of %q", name, role, prev.Core().Name())
		}
		if !token.Compatible(p.Generates(), c.Accepts()) {
			return fmt.Errorf("%w: %q generates %s, %q accepts %s", token.ErrIncompatible,
				prev.Core().Name(), token.KindsString(p.Generates()),
				name, token.KindsString(c.Accepts()))
		}
		prev = a
	}
	return nil
}

func (d *Director) stopped(ctx context.Context) bool {
	return ctx.Err() != nil || d.owner.Core().IsStopped()
}

// Execute runs the children until all are exhausted, the run is stopped or
// a fatal error occurs. input, if not nil, is handed to the first routed
// child.
func (d *Director) Execute(ctx context.Context, input *token.Token) error {
	d.output = nil
	h := d.owner

	start := 0
	for ; start < h.Size(); start++ {
		a := h.Get(start)
		if a.Core().Skip() {
			continue
		}
		if actor.RoleOf(a) != actor.RoleStandalone {
			break
		}
		if d.stopped(ctx) {
			return nil
		}
		if err := actor.Execute(ctx, a); err != nil && handle(ctx, a, err) {
			return err
		}
	}

	last := -1
	for i := h.Size() - 1; i >= start; i-- {
		if !h.Get(i).Core().Skip() {
			last = i
			break
		}
	}
	if last < 0 {
		return nil
	}

	if input != nil {
		first := h.Get(start)
		c, ok := first.(actor.InputConsumer)
		if !ok {
			return fmt.Errorf("first actor %q cannot take input", first.Core().Name())
		}
		if err := actor.Input(c, input); err != nil {
			if handle(ctx, first, err) {
				return err
			}
			return nil
		}
	}

	notFinished := start
	var pending []int
	for {
		if d.stopped(ctx) {
			return nil
		}

		var from int
		if len(pending) > 0 {
			from = pending[len(pending)-1]
		} else {
			from = notFinished
			notFinished = -1
		}

		var tok *token.Token
		for i := from; i <= last; i++ {
			if d.stopped(ctx) {
				break
			}
			curr := h.Get(i)
			if curr.Core().Skip() {
				continue
			}
			prod, isProd := curr.(actor.OutputProducer)

			if tok == nil && isProd && prod.HasPendingOutput() {
				if len(pending) > 0 {
					pending = pending[:len(pending)-1]
				}
			} else {
				if tok != nil {
					c, ok := curr.(actor.InputConsumer)
					if !ok {
						return fmt.Errorf("actor %q cannot take input", curr.Core().Name())
					}
					if err := actor.Input(c, tok); err != nil {
						if handle(ctx, curr, err) {
							return err
						}
						break
					}
				}
				if err := actor.Execute(ctx, curr); err != nil {
					if handle(ctx, curr, err) {
						return err
					}
					break
				}
				if notFinished < 0 && !finished(curr) {
					notFinished = i
				}
			}

			tok = nil
			if isProd && prod.HasPendingOutput() {
				tok = prod.Output()
				if prod.HasPendingOutput() {
					pending = append(pending, i)
				}
			}

			if i == last && tok != nil && d.record {
				d.output = append(d.output, tok)
			}
			if isProd && tok == nil {
				break
			}
		}

		if notFinished < 0 && len(pending) == 0 {
			return nil
		}
	}
}
