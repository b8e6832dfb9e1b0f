package control

import (
	"context"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

// Tee hands every input to its children and then passes it on unchanged.
type Tee struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	director *Director
}

func NewTee() *Tee {
	t := &Tee{}
	t.owner = t
	t.director = NewDirector(t, false)
	return t
}

func (t *Tee) Accepts() []token.Kind   { return firstAccepts(t) }
func (t *Tee) Generates() []token.Kind { return firstAccepts(t) }

func (t *Tee) SetUp(ctx context.Context) error {
	if err := setUpChildren(ctx, t); err != nil {
		return err
	}
	return t.director.Check(true)
}

func (t *Tee) Execute(ctx context.Context) error {
	in := t.TakeInput()
	if err := t.director.Execute(ctx, in); err != nil {
		return err
	}
	t.Push(in)
	return nil
}

func (t *Tee) WrapUp(ctx context.Context) { wrapUpChildren(ctx, t) }

func (t *Tee) CleanUp() {
	t.ClearInput()
	t.ClearOutput()
	cleanUpChildren(t)
}
