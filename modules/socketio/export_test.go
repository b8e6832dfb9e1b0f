package socketio

import "github.com/vk/actorgrid/internal/callable"

// Ref returns the callable reference currently held by the listener.
func (l *Listen) Ref() *callable.Reference { return l.ref }
