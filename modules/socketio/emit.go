package socketio

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Emit is a sink sending every payload as a socket.io event. The
// connection is opened at set up and kept for the whole run.
type Emit struct {
	actor.Base
	actor.InputSlot
	Connection

	Event string

	mu     sync.Mutex
	client *socket.Socket
}

func NewEmit() *Emit { return &Emit{} }

func (e *Emit) Configure(o *options.Options) error {
	if err := e.configure(o); err != nil {
		return err
	}
	var err error
	e.Event, err = o.String("event", "")
	return err
}

func (e *Emit) Accepts() []token.Kind { return nil }

func (e *Emit) SetUp(ctx context.Context) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.Event == "" {
		return errors.New("no event configured")
	}
	client, err := e.dial(ctx, e.Logger(ctx))
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.client = client
	e.mu.Unlock()
	return nil
}

func (e *Emit) Execute(ctx context.Context) error {
	in := e.TakeInput()
	event := e.Expand(e.Event)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil || !e.client.Connected() {
		return errors.New("socket.io client is not connected")
	}
	e.Logger(ctx).Debug("Emitting event.", "event", event)
	e.client.Emit(event, toWire(in.Payload()))
	return nil
}

func (e *Emit) CleanUp() {
	e.ClearInput()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Disconnect()
		e.client = nil
	}
}
