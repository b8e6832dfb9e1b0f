package testutil

import (
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/registry"
)

// NoOp is a standalone that does nothing. It is useful for flows that
// should fail before execution begins but still need a valid tree.
type NoOp struct {
	actor.Base
}

// NoOpModule registers the "NoOp" actor type.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (NoOpModule) Register(r *registry.Registry) {
	r.RegisterActor("NoOp", func() actor.Actor { return &NoOp{} })
}
