// Package exec runs external processes from a flow.
package exec

import (
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the actor types with the registry.
func (Module) Register(r *registry.Registry) {
	r.RegisterActor("Command", func() actor.Actor { return &Command{} })
}
