// Package socketio connects flows to socket.io servers.
package socketio

import (
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the actor types with the registry.
func (Module) Register(r *registry.Registry) {
	r.RegisterActor("SocketIOEmit", func() actor.Actor { return NewEmit() })
	r.RegisterActor("SocketIOListen", func() actor.Actor { return NewListen() })
}
