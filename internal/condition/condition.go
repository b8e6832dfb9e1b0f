// Package condition provides boolean conditions evaluated against a token
// and the run environment of the actor that owns them.
//
// Conditions have a two step lifecycle: SetUp validates and compiles the
// configuration once, Evaluate is called for every token. Not, And and Or
// compose other conditions recursively.
package condition

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// Condition is a boolean test.
type Condition interface {
	SetUp(ctx context.Context) error
	// Evaluate tests t in the environment of owner. t may be nil for
	// conditions used by actors without input.
	Evaluate(ctx context.Context, owner actor.Actor, t *token.Token) (bool, error)
}

// Holder is implemented by everything conditions can be attached to.
type Holder interface {
	AddCondition(c Condition) error
}

// True always holds.
type True struct{}

func (True) SetUp(context.Context) error { return nil }
func (True) Evaluate(context.Context, actor.Actor, *token.Token) (bool, error) {
	return true, nil
}

// False never holds.
type False struct{}

func (False) SetUp(context.Context) error { return nil }
func (False) Evaluate(context.Context, actor.Actor, *token.Token) (bool, error) {
	return false, nil
}

// Not negates a single nested condition.
type Not struct {
	Cond Condition
}

func (n *Not) AddCondition(c Condition) error {
	if n.Cond != nil {
		return errors.New("not takes exactly one condition")
	}
	n.Cond = c
	return nil
}

func (n *Not) SetUp(ctx context.Context) error {
	if n.Cond == nil {
		return errors.New("not: no condition to negate")
	}
	return n.Cond.SetUp(ctx)
}

func (n *Not) Evaluate(ctx context.Context, owner actor.Actor, t *token.Token) (bool, error) {
	ok, err := n.Cond.Evaluate(ctx, owner, t)
	return !ok, err
}

// And holds when all nested conditions hold. Evaluation short-circuits.
// An empty And holds.
type And struct {
	Conds []Condition
}

func (a *And) AddCondition(c Condition) error {
	a.Conds = append(a.Conds, c)
	return nil
}

func (a *And) SetUp(ctx context.Context) error { return setUpAll(ctx, a.Conds) }

func (a *And) Evaluate(ctx context.Context, owner actor.Actor, t *token.Token) (bool, error) {
	for i, c := range a.Conds {
		ok, err := c.Evaluate(ctx, owner, t)
		if err != nil {
			return false, fmt.Errorf("and #%d: %w", i+1, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Or holds when any nested condition holds. Evaluation short-circuits. An
// empty Or does not hold.
type Or struct {
	Conds []Condition
}

func (o *Or) AddCondition(c Condition) error {
	o.Conds = append(o.Conds, c)
	return nil
}

func (o *Or) SetUp(ctx context.Context) error { return setUpAll(ctx, o.Conds) }

func (o *Or) Evaluate(ctx context.Context, owner actor.Actor, t *token.Token) (bool, error) {
	for i, c := range o.Conds {
		ok, err := c.Evaluate(ctx, owner, t)
		if err != nil {
			return false, fmt.Errorf("or #%d: %w", i+1, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func setUpAll(ctx context.Context, conds []Condition) error {
	for _, c := range conds {
		if err := c.SetUp(ctx); err != nil {
			return err
		}
	}
	return nil
}

// HasStorageValue holds when a storage key, or a key of a named storage
// cache, is present.
type HasStorageValue struct {
	Key   string
	Cache string
}

func (h *HasStorageValue) Configure(o *options.Options) error {
	var err error
	if h.Key, err = o.String("key", h.Key); err != nil {
		return err
	}
	h.Cache, err = o.String("cache", h.Cache)
	return err
}

func (h *HasStorageValue) SetUp(context.Context) error {
	if h.Key == "" {
		return errors.New("has storage value: no key configured")
	}
	return nil
}

func (h *HasStorageValue) Evaluate(_ context.Context, owner actor.Actor, _ *token.Token) (bool, error) {
	st := owner.Core().Env().Storage
	if h.Cache != "" {
		_, ok := st.GetCached(h.Cache, h.Key)
		return ok, nil
	}
	return st.Has(h.Key), nil
}

// VariableEquals holds when a variable is set to Value. Value is expanded
// at evaluation time.
type VariableEquals struct {
	Name  string
	Value string
}

func (v *VariableEquals) Configure(o *options.Options) error {
	var err error
	if v.Name, err = o.String("variable", v.Name); err != nil {
		return err
	}
	v.Value, err = o.String("value", v.Value)
	return err
}

func (v *VariableEquals) SetUp(context.Context) error {
	if v.Name == "" {
		return errors.New("variable equals: no variable configured")
	}
	return nil
}

func (v *VariableEquals) Evaluate(_ context.Context, owner actor.Actor, _ *token.Token) (bool, error) {
	vars := owner.Core().Env().Variables
	got, ok := vars.Get(v.Name)
	return ok && got == vars.Expand(v.Value), nil
}
