package control

import (
	"context"
	"fmt"
	"runtime"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
	"golang.org/x/sync/errgroup"
)

// IfThenElse hands its input to the first child when all conditions hold
// and to the second child, if any, otherwise. Whatever the chosen branch
// emits is forwarded.
type IfThenElse struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	conditions []condition.Condition
}

func NewIfThenElse() *IfThenElse {
	i := &IfThenElse{}
	i.owner = i
	return i
}

func (i *IfThenElse) AddCondition(c condition.Condition) error {
	i.conditions = append(i.conditions, c)
	return nil
}

func (i *IfThenElse) Accepts() []token.Kind   { return nil }
func (i *IfThenElse) Generates() []token.Kind { return nil }

func (i *IfThenElse) SetUp(ctx context.Context) error {
	if n := len(i.list); n < 1 || n > 2 {
		return fmt.Errorf("expected a then branch and an optional else branch, got %d children", n)
	}
	if len(i.conditions) == 0 {
		return fmt.Errorf("no condition configured")
	}
	for _, c := range i.conditions {
		if err := c.SetUp(ctx); err != nil {
			return err
		}
	}
	return setUpChildren(ctx, i)
}

func (i *IfThenElse) Execute(ctx context.Context) error {
	in := i.TakeInput()
	ok := true
	for _, c := range i.conditions {
		held, err := c.Evaluate(ctx, i, in)
		if err != nil {
			return err
		}
		if !held {
			ok = false
			break
		}
	}

	var branch actor.Actor
	switch {
	case ok:
		branch = i.list[0]
	case len(i.list) > 1:
		branch = i.list[1]
	default:
		return nil
	}
	return i.run(ctx, branch, in)
}

func (i *IfThenElse) run(ctx context.Context, branch actor.Actor, in *token.Token) error {
	out, err := drive(ctx, branch, in)
	for _, t := range out {
		i.Push(t)
	}
	if err != nil && handle(ctx, branch, err) {
		return err
	}
	return nil
}

func (i *IfThenElse) WrapUp(ctx context.Context) { wrapUpChildren(ctx, i) }

func (i *IfThenElse) CleanUp() {
	i.ClearInput()
	i.ClearOutput()
	cleanUpChildren(i)
}

// Switch hands its input to the case of the first condition that holds.
// With one case more than conditions, the last case is the default.
type Switch struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	conditions []condition.Condition
}

func NewSwitch() *Switch {
	s := &Switch{}
	s.owner = s
	return s
}

func (s *Switch) AddCondition(c condition.Condition) error {
	s.conditions = append(s.conditions, c)
	return nil
}

func (s *Switch) Accepts() []token.Kind   { return nil }
func (s *Switch) Generates() []token.Kind { return nil }

func (s *Switch) SetUp(ctx context.Context) error {
	nc, na := len(s.conditions), len(s.list)
	if nc == 0 {
		return fmt.Errorf("no condition configured")
	}
	if na != nc && na != nc+1 {
		return fmt.Errorf("%d conditions need %d or %d cases, got %d", nc, nc, nc+1, na)
	}
	for _, c := range s.conditions {
		if err := c.SetUp(ctx); err != nil {
			return err
		}
	}
	return setUpChildren(ctx, s)
}

func (s *Switch) Execute(ctx context.Context) error {
	in := s.TakeInput()
	index := -1
	for i, c := range s.conditions {
		ok, err := c.Evaluate(ctx, s, in)
		if err != nil {
			return fmt.Errorf("condition #%d: %w", i+1, err)
		}
		if ok {
			index = i
			break
		}
	}
	if index < 0 {
		if len(s.list) == len(s.conditions) {
			s.Logger(ctx).Debug("No case matched.")
			return nil
		}
		index = len(s.list) - 1
	}

	branch := s.list[index]
	out, err := drive(ctx, branch, in)
	for _, t := range out {
		s.Push(t)
	}
	if err != nil && handle(ctx, branch, err) {
		return err
	}
	return nil
}

func (s *Switch) WrapUp(ctx context.Context) { wrapUpChildren(ctx, s) }

func (s *Switch) CleanUp() {
	s.ClearInput()
	s.ClearOutput()
	cleanUpChildren(s)
}

// Branch hands a copy of its input to every child. With Workers above one
// the children run in parallel, at most Workers at a time.
type Branch struct {
	actor.Base
	actor.InputSlot
	children

	Workers int
}

func NewBranch() *Branch {
	b := &Branch{Workers: 1}
	b.owner = b
	return b
}

func (b *Branch) Configure(o *options.Options) error {
	var err error
	b.Workers, err = o.Int("workers", b.Workers)
	return err
}

func (b *Branch) Accepts() []token.Kind { return nil }

func (b *Branch) SetUp(ctx context.Context) error {
	for _, a := range b.list {
		if _, ok := a.(actor.InputConsumer); !ok {
			return fmt.Errorf("branch %q does not accept input", a.Core().Name())
		}
	}
	return setUpChildren(ctx, b)
}

func (b *Branch) Execute(ctx context.Context) error {
	in := b.TakeInput()
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, a := range b.list {
		if a.Core().Skip() {
			continue
		}
		g.Go(func() error {
			_, err := drive(gctx, a, in)
			if err != nil && handle(gctx, a, err) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *Branch) WrapUp(ctx context.Context) { wrapUpChildren(ctx, b) }

func (b *Branch) CleanUp() {
	b.ClearInput()
	cleanUpChildren(b)
}

// TryCatch hands its input to the try child. If that fails, the error is
// optionally stored in a variable and the catch child, if any, gets the
// same input instead. Whatever the executed child emits is forwarded.
type TryCatch struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	StoreError    bool
	ErrorVariable string

	guarded *actor.Env
}

func NewTryCatch() *TryCatch {
	t := &TryCatch{ErrorVariable: "trycatch"}
	t.owner = t
	return t
}

func (t *TryCatch) Configure(o *options.Options) error {
	var err error
	if t.StoreError, err = o.Bool("store_error", t.StoreError); err != nil {
		return err
	}
	t.ErrorVariable, err = o.String("error_variable", t.ErrorVariable)
	return err
}

func (t *TryCatch) Accepts() []token.Kind   { return nil }
func (t *TryCatch) Generates() []token.Kind { return nil }

func (t *TryCatch) SetUp(ctx context.Context) error {
	if n := len(t.list); n < 1 || n > 2 {
		return fmt.Errorf("expected a try branch and an optional catch branch, got %d children", n)
	}
	t.guarded = t.Env().Guarded()
	actor.SetEnv(t.list[0], t.guarded)
	return setUpChildren(ctx, t)
}

func (t *TryCatch) Execute(ctx context.Context) error {
	in := t.TakeInput()
	t.guarded.Release()

	try := t.list[0]
	out, err := drive(ctx, try, in)
	if err == nil {
		err = t.guarded.Caught()
	}
	t.guarded.Release()
	if err == nil {
		for _, tok := range out {
			t.Push(tok)
		}
		return nil
	}
	if t.Env().Stopped() {
		return nil
	}

	t.Logger(ctx).Debug("Try branch failed.", "error", err)
	if t.StoreError {
		t.Env().Variables.Set(t.ErrorVariable, err.Error())
	}
	if len(t.list) < 2 {
		return nil
	}
	catch := t.list[1]
	var feed *token.Token
	if _, ok := catch.(actor.InputConsumer); ok {
		feed = in
	}
	out, err = drive(ctx, catch, feed)
	for _, tok := range out {
		t.Push(tok)
	}
	if err != nil && handle(ctx, catch, err) {
		return err
	}
	return nil
}

func (t *TryCatch) WrapUp(ctx context.Context) { wrapUpChildren(ctx, t) }

func (t *TryCatch) CleanUp() {
	t.ClearInput()
	t.ClearOutput()
	cleanUpChildren(t)
}
