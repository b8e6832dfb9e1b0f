package control

import (
	"context"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
)

// Flow is the root of a flow tree. It is a standalone whose children are
// routed without input.
type Flow struct {
	actor.Base
	children

	ErrorHandling actor.ErrorHandling

	director *Director
}

func NewFlow() *Flow {
	f := &Flow{}
	f.owner = f
	f.director = NewDirector(f, false)
	return f
}

func (f *Flow) Configure(o *options.Options) error {
	s, err := o.String("error_handling", f.ErrorHandling.String())
	if err != nil {
		return err
	}
	f.ErrorHandling, err = actor.ParseErrorHandling(s)
	return err
}

func (f *Flow) SetUp(ctx context.Context) error {
	f.Env().SetErrorHandling(f.ErrorHandling)
	if err := setUpChildren(ctx, f); err != nil {
		return err
	}
	return f.director.Check(false)
}

func (f *Flow) Execute(ctx context.Context) error {
	return f.director.Execute(ctx, nil)
}

func (f *Flow) WrapUp(ctx context.Context) { wrapUpChildren(ctx, f) }

func (f *Flow) CleanUp() { cleanUpChildren(f) }
