package standard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// SetStorageValue stores every payload it receives under a key, or in a
// named storage cache when Cache is set.
type SetStorageValue struct {
	actor.Base
	actor.InputSlot

	Key   string
	Cache string
}

func (s *SetStorageValue) Configure(o *options.Options) error {
	var err error
	if s.Key, err = o.String("storage_name", ""); err != nil {
		return err
	}
	s.Cache, err = o.String("cache", "")
	return err
}

func (s *SetStorageValue) Accepts() []token.Kind { return nil }

func (s *SetStorageValue) SetUp(context.Context) error {
	if s.Key == "" {
		return errors.New("no storage name configured")
	}
	return nil
}

func (s *SetStorageValue) Execute(context.Context) error {
	in := s.TakeInput()
	key := s.Expand(s.Key)
	store := s.Env().Storage
	if s.Cache != "" {
		return store.PutCached(s.Cache, key, in.Payload())
	}
	store.Put(key, in.Payload())
	return nil
}

func (s *SetStorageValue) CleanUp() { s.ClearInput() }

// Collect appends every payload it receives to a list kept in storage. The
// list is stored under the actor's name unless a storage name is set.
// Collect actors sharing a storage name may run concurrently.
type Collect struct {
	actor.Base
	actor.InputSlot

	Key string
}

func (c *Collect) Configure(o *options.Options) error {
	var err error
	c.Key, err = o.String("storage_name", "")
	return err
}

func (c *Collect) Accepts() []token.Kind { return nil }

func (c *Collect) key() string {
	if c.Key == "" {
		return c.Name()
	}
	return c.Expand(c.Key)
}

func (c *Collect) SetUp(context.Context) error {
	c.Env().Storage.Put(c.key(), []any{})
	return nil
}

func (c *Collect) Execute(context.Context) error {
	in := c.TakeInput()
	c.Env().Storage.Update(c.key(), func(old any, _ bool) any {
		items, _ := old.([]any)
		return append(items[:len(items):len(items)], in.Payload())
	})
	return nil
}

func (c *Collect) CleanUp() { c.ClearInput() }

// Display writes every payload on its own line.
type Display struct {
	actor.Base
	actor.InputSlot

	Prefix string
	Out    io.Writer

	mu sync.Mutex
}

func NewDisplay() *Display { return &Display{Out: os.Stdout} }

func (d *Display) Configure(o *options.Options) error {
	var err error
	d.Prefix, err = o.String("prefix", "")
	return err
}

func (d *Display) Accepts() []token.Kind { return nil }

func (d *Display) Execute(ctx context.Context) error {
	in := d.TakeInput()
	d.Logger(ctx).Debug("Displaying token.", "kind", in.Kind().String())

	d.mu.Lock()
	defer d.mu.Unlock()
	if in.Payload() == nil {
		_, err := fmt.Fprintf(d.Out, "%s(null)\n", d.Expand(d.Prefix))
		return err
	}
	_, err := fmt.Fprintf(d.Out, "%s%v\n", d.Expand(d.Prefix), in.Payload())
	return err
}

func (d *Display) CleanUp() { d.ClearInput() }

// Null discards its input.
type Null struct {
	actor.Base
	actor.InputSlot
}

func (n *Null) Accepts() []token.Kind { return nil }

func (n *Null) Execute(context.Context) error {
	n.ClearInput()
	return nil
}

func (n *Null) CleanUp() { n.ClearInput() }
