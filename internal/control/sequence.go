package control

import (
	"context"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

// Sequence is a sink that routes its input through its children.
type Sequence struct {
	actor.Base
	actor.InputSlot
	children

	director *Director
}

func NewSequence() *Sequence {
	s := &Sequence{}
	s.owner = s
	s.director = NewDirector(s, false)
	return s
}

func (s *Sequence) Accepts() []token.Kind { return firstAccepts(s) }

func (s *Sequence) SetUp(ctx context.Context) error {
	if err := setUpChildren(ctx, s); err != nil {
		return err
	}
	return s.director.Check(true)
}

func (s *Sequence) Execute(ctx context.Context) error {
	return s.director.Execute(ctx, s.TakeInput())
}

func (s *Sequence) WrapUp(ctx context.Context) { wrapUpChildren(ctx, s) }

func (s *Sequence) CleanUp() {
	s.ClearInput()
	cleanUpChildren(s)
}

// SubProcess is a transformer that routes its input through its children
// and emits whatever the last child produces.
type SubProcess struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	director *Director
}

func NewSubProcess() *SubProcess {
	s := &SubProcess{}
	s.owner = s
	s.director = NewDirector(s, true)
	return s
}

func (s *SubProcess) Accepts() []token.Kind   { return firstAccepts(s) }
func (s *SubProcess) Generates() []token.Kind { return lastGenerates(s) }

func (s *SubProcess) SetUp(ctx context.Context) error {
	if err := setUpChildren(ctx, s); err != nil {
		return err
	}
	return s.director.Check(true)
}

func (s *SubProcess) Execute(ctx context.Context) error {
	err := s.director.Execute(ctx, s.TakeInput())
	for _, t := range s.director.Output() {
		s.Push(t)
	}
	return err
}

func (s *SubProcess) WrapUp(ctx context.Context) { wrapUpChildren(ctx, s) }

func (s *SubProcess) CleanUp() {
	s.ClearInput()
	s.ClearOutput()
	cleanUpChildren(s)
}

// SequenceSource is a source that runs its children without input and
// emits whatever the last child produces.
type SequenceSource struct {
	actor.Base
	actor.OutputQueue
	children

	director *Director
}

func NewSequenceSource() *SequenceSource {
	s := &SequenceSource{}
	s.owner = s
	s.director = NewDirector(s, true)
	return s
}

func (s *SequenceSource) Generates() []token.Kind { return lastGenerates(s) }

func (s *SequenceSource) SetUp(ctx context.Context) error {
	if err := setUpChildren(ctx, s); err != nil {
		return err
	}
	return s.director.Check(false)
}

func (s *SequenceSource) Execute(ctx context.Context) error {
	err := s.director.Execute(ctx, nil)
	for _, t := range s.director.Output() {
		s.Push(t)
	}
	return err
}

func (s *SequenceSource) WrapUp(ctx context.Context) { wrapUpChildren(ctx, s) }

func (s *SequenceSource) CleanUp() {
	s.ClearOutput()
	cleanUpChildren(s)
}
