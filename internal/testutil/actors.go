package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

// Named sets the name of a and returns it.
func Named[T actor.Actor](a T, name string) T {
	a.Core().SetName(name)
	return a
}

// Counters tracks lifecycle calls of a test actor.
type Counters struct {
	SetUps   atomic.Int32
	Executes atomic.Int32
	WrapUps  atomic.Int32
	CleanUps atomic.Int32
}

// Source emits Payloads, one token per Execute. Once exhausted, the next
// Execute starts over.
type Source struct {
	actor.Base
	actor.OutputQueue
	Counters

	Payloads []any
	Kinds    []token.Kind
	// SetUpErr, if set, fails SetUp.
	SetUpErr error

	next int
}

func NewSource(name string, payloads ...any) *Source {
	return Named(&Source{Payloads: payloads}, name)
}

func (s *Source) Generates() []token.Kind { return s.Kinds }

func (s *Source) SetUp(context.Context) error {
	s.SetUps.Add(1)
	s.next = 0
	return s.SetUpErr
}

func (s *Source) Execute(context.Context) error {
	s.Executes.Add(1)
	if s.next >= len(s.Payloads) {
		s.next = 0
	}
	if s.next < len(s.Payloads) {
		s.Push(s.NewToken(s.Payloads[s.next]))
		s.next++
	}
	return nil
}

func (s *Source) IsFinished() bool { return s.next >= len(s.Payloads) }

func (s *Source) WrapUp(context.Context) { s.WrapUps.Add(1) }

func (s *Source) CleanUp() {
	s.CleanUps.Add(1)
	s.ClearOutput()
}

// Burst emits all Payloads in a single Execute.
type Burst struct {
	actor.Base
	actor.OutputQueue

	Payloads []any
}

func NewBurst(name string, payloads ...any) *Burst {
	return Named(&Burst{Payloads: payloads}, name)
}

func (b *Burst) Generates() []token.Kind { return nil }

func (b *Burst) Execute(context.Context) error {
	for _, p := range b.Payloads {
		b.Push(b.NewToken(p))
	}
	return nil
}

// Upper upper-cases string payloads.
type Upper struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
}

func NewUpper(name string) *Upper { return Named(&Upper{}, name) }

func (u *Upper) Accepts() []token.Kind   { return []token.Kind{token.KindString} }
func (u *Upper) Generates() []token.Kind { return []token.Kind{token.KindString} }

func (u *Upper) Execute(context.Context) error {
	in := u.TakeInput()
	u.Push(u.NewToken(strings.ToUpper(in.Payload().(string))))
	return nil
}

// Fanout emits every input Times times.
type Fanout struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue

	Times int
}

func NewFanout(name string, times int) *Fanout { return Named(&Fanout{Times: times}, name) }

func (f *Fanout) Accepts() []token.Kind   { return nil }
func (f *Fanout) Generates() []token.Kind { return nil }

func (f *Fanout) Execute(context.Context) error {
	in := f.TakeInput()
	for i := 0; i < f.Times; i++ {
		f.Push(f.NewToken(fmt.Sprintf("%v-%d", in.Payload(), i)))
	}
	return nil
}

// Fail is a transformer that fails for payloads equal to On, or panics
// when Panic is set. Other payloads pass through.
type Fail struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue

	On    any
	Panic bool
}

func NewFail(name string, on any) *Fail { return Named(&Fail{On: on}, name) }

func (f *Fail) Accepts() []token.Kind   { return nil }
func (f *Fail) Generates() []token.Kind { return nil }

func (f *Fail) Execute(context.Context) error {
	in := f.TakeInput()
	if in.Payload() == f.On {
		if f.Panic {
			panic(fmt.Sprintf("cannot handle %v", f.On))
		}
		return fmt.Errorf("cannot handle %v", f.On)
	}
	f.Push(in)
	return nil
}

// Collector is a sink recording every payload it receives. It is safe for
// concurrent invocation and notes when executions overlap.
type Collector struct {
	actor.Base
	actor.InputSlot
	Counters

	Kinds []token.Kind
	Delay time.Duration

	mu      sync.Mutex
	got     []any
	records []ExecutionRecord
	active  atomic.Int32
	overlap atomic.Bool
}

func NewCollector(name string) *Collector { return Named(&Collector{}, name) }

func (c *Collector) Accepts() []token.Kind { return c.Kinds }

func (c *Collector) SetUp(context.Context) error {
	c.SetUps.Add(1)
	return nil
}

func (c *Collector) Execute(ctx context.Context) error {
	c.Executes.Add(1)
	if c.active.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.active.Add(-1)

	start := time.Now()
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	in := c.TakeInput()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, in.Payload())
	c.records = append(c.records, ExecutionRecord{Start: start, End: time.Now()})
	return nil
}

func (c *Collector) WrapUp(context.Context) { c.WrapUps.Add(1) }

func (c *Collector) CleanUp() {
	c.CleanUps.Add(1)
	c.ClearInput()
}

// Got returns a copy of the received payloads in arrival order.
func (c *Collector) Got() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.got...)
}

// Records returns the execution records in arrival order.
func (c *Collector) Records() []ExecutionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ExecutionRecord(nil), c.records...)
}

// Overlapped reports whether two executions ever ran at the same time.
func (c *Collector) Overlapped() bool { return c.overlap.Load() }

// Counter is a standalone counting its lifecycle calls.
type Counter struct {
	actor.Base
	Counters

	SetUpErr error
}

func NewCounter(name string) *Counter { return Named(&Counter{}, name) }

func (c *Counter) SetUp(context.Context) error {
	c.SetUps.Add(1)
	return c.SetUpErr
}

func (c *Counter) Execute(context.Context) error {
	c.Executes.Add(1)
	return nil
}

func (c *Counter) WrapUp(context.Context) { c.WrapUps.Add(1) }
func (c *Counter) CleanUp()               { c.CleanUps.Add(1) }

// ErrSetUp is a canned set up failure.
var ErrSetUp = errors.New("set up refused")
