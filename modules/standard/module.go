// Package standard provides the everyday leaf actors: constant sources,
// simple transformers, variable and storage access and output sinks.
package standard

import (
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the actor types with the registry.
func (Module) Register(r *registry.Registry) {
	r.RegisterActor("StringConstants", func() actor.Actor { return &StringConstants{} })
	r.RegisterActor("ForLoop", func() actor.Actor { return NewForLoop() })
	r.RegisterActor("GetStorageValue", func() actor.Actor { return &GetStorageValue{} })
	r.RegisterActor("MakeContainer", func() actor.Actor { return &MakeContainer{} })
	r.RegisterActor("UpperCase", func() actor.Actor { return &UpperCase{} })
	r.RegisterActor("Increment", func() actor.Actor { return NewIncrement() })
	r.RegisterActor("SetVariable", func() actor.Actor { return &SetVariable{} })
	r.RegisterActor("InitStorageCache", func() actor.Actor { return NewInitStorageCache() })
	r.RegisterActor("SetStorageValue", func() actor.Actor { return &SetStorageValue{} })
	r.RegisterActor("Collect", func() actor.Actor { return &Collect{} })
	r.RegisterActor("Display", func() actor.Actor { return NewDisplay() })
	r.RegisterActor("Null", func() actor.Actor { return &Null{} })
}
