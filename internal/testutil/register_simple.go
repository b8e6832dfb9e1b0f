package testutil

import (
	"context"
	"sync"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/registry"
)

// Recorder collects the payloads received by Record actors, keyed by the
// actor's full name.
type Recorder struct {
	mu  sync.Mutex
	got map[string][]any
}

func NewRecorder() *Recorder { return &Recorder{got: map[string][]any{}} }

func (r *Recorder) add(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got[name] = append(r.got[name], v)
}

// Get returns a copy of what the named actor received.
func (r *Recorder) Get(fullName string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.got[fullName]...)
}

// Record is a sink handing every payload to its Recorder.
type Record struct {
	actor.Base
	actor.InputSlot

	rec *Recorder
}

func (r *Record) Execute(context.Context) error {
	r.rec.add(r.FullName(), r.TakeInput().Payload())
	return nil
}

func (r *Record) CleanUp() { r.ClearInput() }

// RecorderModule registers the "Record" sink type writing into Recorder.
type RecorderModule struct {
	Recorder *Recorder
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.RegisterActor("Record", func() actor.Actor { return &Record{rec: m.Recorder} })
}
