package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// ContainerValuePicker extracts one named value from a container token and
// sends it down the alternate path formed by its children. The container
// itself continues on the default path unless SwitchOutputs is set, in
// which case nothing is emitted.
type ContainerValuePicker struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	Value         string
	SwitchOutputs bool

	director *Director
}

func NewContainerValuePicker() *ContainerValuePicker {
	p := &ContainerValuePicker{}
	p.owner = p
	p.director = NewDirector(p, false)
	return p
}

func (p *ContainerValuePicker) Configure(o *options.Options) error {
	var err error
	if p.Value, err = o.String("value", p.Value); err != nil {
		return err
	}
	p.SwitchOutputs, err = o.Bool("switch_outputs", p.SwitchOutputs)
	return err
}

func (p *ContainerValuePicker) Accepts() []token.Kind   { return []token.Kind{token.KindContainer} }
func (p *ContainerValuePicker) Generates() []token.Kind { return []token.Kind{token.KindContainer} }

func (p *ContainerValuePicker) SetUp(ctx context.Context) error {
	if p.Value == "" {
		return errors.New("no container value name configured")
	}
	if err := setUpChildren(ctx, p); err != nil {
		return err
	}
	return p.director.Check(true)
}

func (p *ContainerValuePicker) Execute(ctx context.Context) error {
	in := p.TakeInput()
	c, ok := token.AsContainer(in.Payload())
	if !ok {
		return fmt.Errorf("expected a container, got %s", in.Kind())
	}

	name := p.Expand(p.Value)
	if v, found := c.Value(name); found {
		if err := p.director.Execute(ctx, p.NewToken(v)); err != nil {
			return err
		}
	} else {
		p.Logger(ctx).Debug("Container value not present.", "value", name, "available", c.Names())
	}

	if !p.SwitchOutputs {
		p.Push(in)
	}
	return nil
}

func (p *ContainerValuePicker) WrapUp(ctx context.Context) { wrapUpChildren(ctx, p) }

func (p *ContainerValuePicker) CleanUp() {
	p.ClearInput()
	p.ClearOutput()
	cleanUpChildren(p)
}
