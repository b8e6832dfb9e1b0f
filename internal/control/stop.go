package control

import (
	"context"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// Stop ends the run when it receives a token. The run finishes as stopped,
// not failed.
type Stop struct {
	actor.Base
	actor.InputSlot

	Message string
}

func NewStop() *Stop { return &Stop{} }

func (s *Stop) Configure(o *options.Options) error {
	var err error
	s.Message, err = o.String("message", s.Message)
	return err
}

func (s *Stop) Accepts() []token.Kind { return nil }

func (s *Stop) Execute(ctx context.Context) error {
	s.ClearInput()
	msg := s.Expand(s.Message)
	s.Logger(ctx).Info("Stopping flow.", "message", msg)
	s.Env().Stop(msg)
	return nil
}

func (s *Stop) CleanUp() { s.ClearInput() }
