package standard

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// StringConstants emits its strings, one token each, with variables
// expanded at execution time.
type StringConstants struct {
	actor.Base
	actor.OutputQueue

	Strings []string
}

func (s *StringConstants) Configure(o *options.Options) error {
	var err error
	s.Strings, err = o.Strings("strings")
	return err
}

func (s *StringConstants) Generates() []token.Kind { return []token.Kind{token.KindString} }

func (s *StringConstants) Execute(context.Context) error {
	for _, v := range s.Strings {
		s.Push(s.NewToken(s.Expand(v)))
	}
	return nil
}

func (s *StringConstants) CleanUp() { s.ClearOutput() }

// ForLoop emits the integers from Lower to Upper, inclusive, in Step
// increments. A negative Step counts down.
type ForLoop struct {
	actor.Base
	actor.OutputQueue

	Lower, Upper, Step int
}

func NewForLoop() *ForLoop {
	return &ForLoop{Lower: 1, Upper: 10, Step: 1}
}

func (f *ForLoop) Configure(o *options.Options) error {
	var err error
	if f.Lower, err = o.Int("lower", f.Lower); err != nil {
		return err
	}
	if f.Upper, err = o.Int("upper", f.Upper); err != nil {
		return err
	}
	f.Step, err = o.Int("step", f.Step)
	return err
}

func (f *ForLoop) Generates() []token.Kind { return []token.Kind{token.KindInt} }

func (f *ForLoop) SetUp(context.Context) error {
	if f.Step == 0 {
		return errors.New("step must not be zero")
	}
	return nil
}

func (f *ForLoop) Execute(context.Context) error {
	if f.Step > 0 {
		for i := f.Lower; i <= f.Upper; i += f.Step {
			f.Push(f.NewToken(i))
		}
		return nil
	}
	for i := f.Lower; i >= f.Upper; i += f.Step {
		f.Push(f.NewToken(i))
	}
	return nil
}

func (f *ForLoop) CleanUp() { f.ClearOutput() }

// GetStorageValue emits a storage value, or the value of a named storage
// cache when Cache is set. Nothing is emitted if the key is absent.
type GetStorageValue struct {
	actor.Base
	actor.OutputQueue

	Key   string
	Cache string
}

func (g *GetStorageValue) Configure(o *options.Options) error {
	var err error
	if g.Key, err = o.String("storage_name", ""); err != nil {
		return err
	}
	g.Cache, err = o.String("cache", "")
	return err
}

func (g *GetStorageValue) Generates() []token.Kind { return nil }

func (g *GetStorageValue) SetUp(context.Context) error {
	if g.Key == "" {
		return errors.New("no storage name configured")
	}
	return nil
}

func (g *GetStorageValue) Execute(ctx context.Context) error {
	store := g.Env().Storage
	key := g.Expand(g.Key)

	var v any
	var ok bool
	if g.Cache != "" {
		v, ok = store.GetCached(g.Cache, key)
	} else {
		v, ok = store.Get(key)
	}
	if !ok {
		g.Logger(ctx).Debug("Storage value not present.", "storage_name", key, "cache", g.Cache)
		return nil
	}
	g.Push(g.NewToken(v))
	return nil
}

func (g *GetStorageValue) CleanUp() { g.ClearOutput() }

// MakeContainer emits a single container built from constant values and
// storage values. String constants are expanded at execution time.
type MakeContainer struct {
	actor.Base
	actor.OutputQueue

	Values        map[string]any
	StorageValues []string
}

func (m *MakeContainer) Configure(o *options.Options) error {
	v, err := o.Any("values")
	if err != nil {
		return err
	}
	if v != nil {
		values, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("option %q: expected an object, got %T", "values", v)
		}
		m.Values = values
	}
	m.StorageValues, err = o.Strings("storage_values")
	return err
}

func (m *MakeContainer) Generates() []token.Kind { return []token.Kind{token.KindContainer} }

func (m *MakeContainer) Execute(ctx context.Context) error {
	c := make(token.Container, len(m.Values)+len(m.StorageValues))
	for k, v := range m.Values {
		if s, ok := v.(string); ok {
			v = m.Expand(s)
		}
		c[k] = v
	}
	store := m.Env().Storage
	for _, key := range m.StorageValues {
		if v, ok := store.Get(key); ok {
			c[key] = v
		} else {
			m.Logger(ctx).Debug("Storage value not present.", "storage_name", key)
		}
	}
	m.Push(m.NewToken(c))
	return nil
}

func (m *MakeContainer) CleanUp() { m.ClearOutput() }
