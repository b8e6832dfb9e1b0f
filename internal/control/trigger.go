package control

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/storage"
	"github.com/vk/actorgrid/internal/token"
	"github.com/vk/actorgrid/internal/variables"
)

// Trigger runs its children once per input token and then passes the
// token on unchanged. The children are set up once, together with the
// trigger. Attached conditions gate the firing: all must hold.
type Trigger struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
	children

	conditions []condition.Condition
	fired      int
	director   *Director
}

func NewTrigger() *Trigger {
	t := &Trigger{}
	t.owner = t
	t.director = NewDirector(t, false)
	return t
}

func (t *Trigger) AddCondition(c condition.Condition) error {
	t.conditions = append(t.conditions, c)
	return nil
}

func (t *Trigger) Accepts() []token.Kind   { return nil }
func (t *Trigger) Generates() []token.Kind { return nil }

// Fired returns how often the children ran since set up.
func (t *Trigger) Fired() int { return t.fired }

func (t *Trigger) SetUp(ctx context.Context) error {
	t.fired = 0
	for _, c := range t.conditions {
		if err := c.SetUp(ctx); err != nil {
			return err
		}
	}
	if err := setUpChildren(ctx, t); err != nil {
		return err
	}
	return t.director.Check(false)
}

// fire runs the children for in unless a condition vetoes it.
func (t *Trigger) fire(ctx context.Context, self actor.Actor, in *token.Token) (bool, error) {
	for _, c := range t.conditions {
		ok, err := c.Evaluate(ctx, self, in)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	t.fired++
	return true, t.director.Execute(ctx, nil)
}

func (t *Trigger) Execute(ctx context.Context) error {
	in := t.TakeInput()
	if _, err := t.fire(ctx, t, in); err != nil {
		return err
	}
	t.Push(in)
	return nil
}

func (t *Trigger) WrapUp(ctx context.Context) { wrapUpChildren(ctx, t) }

func (t *Trigger) CleanUp() {
	t.ClearInput()
	t.ClearOutput()
	cleanUpChildren(t)
}

// ScopeHandling decides how a local scope is seeded from the outer scope.
type ScopeHandling int

const (
	// ScopeEmpty starts with nothing.
	ScopeEmpty ScopeHandling = iota
	// ScopeCopy starts with a filtered copy of the outer scope.
	ScopeCopy
	// ScopeShare uses the outer scope directly.
	ScopeShare
)

func (s ScopeHandling) String() string {
	switch s {
	case ScopeCopy:
		return "copy"
	case ScopeShare:
		return "share"
	default:
		return "empty"
	}
}

func ParseScopeHandling(s string) (ScopeHandling, error) {
	switch s {
	case "", "empty":
		return ScopeEmpty, nil
	case "copy":
		return ScopeCopy, nil
	case "share":
		return ScopeShare, nil
	}
	return ScopeEmpty, fmt.Errorf("unknown scope handling %q, expected empty, copy or share", s)
}

// LocalScopeTrigger is a Trigger whose children see their own variables
// and storage. The local scope is created at set up and lives for the run.
// After every firing, names matching the propagation filters are copied
// back to the outer scope.
type LocalScopeTrigger struct {
	Trigger

	VariablesScope   ScopeHandling
	VariablesFilter  glob.Glob
	StorageScope     ScopeHandling
	StorageFilter    glob.Glob
	PropagateVars    glob.Glob
	PropagateStorage glob.Glob

	local *actor.Env
}

func NewLocalScopeTrigger() *LocalScopeTrigger {
	l := &LocalScopeTrigger{}
	l.owner = l
	l.director = NewDirector(l, false)
	return l
}

func (l *LocalScopeTrigger) Configure(o *options.Options) error {
	var err error
	if l.VariablesScope, err = scopeOption(o, "variables_scope"); err != nil {
		return err
	}
	if l.StorageScope, err = scopeOption(o, "storage_scope"); err != nil {
		return err
	}
	if l.VariablesFilter, err = globOption(o, "variables_filter"); err != nil {
		return err
	}
	if l.StorageFilter, err = globOption(o, "storage_filter"); err != nil {
		return err
	}
	if l.PropagateVars, err = globOption(o, "propagate_variables"); err != nil {
		return err
	}
	l.PropagateStorage, err = globOption(o, "propagate_storage")
	return err
}

func scopeOption(o *options.Options, name string) (ScopeHandling, error) {
	s, err := o.String(name, "")
	if err != nil {
		return ScopeEmpty, err
	}
	h, err := ParseScopeHandling(s)
	if err != nil {
		return ScopeEmpty, fmt.Errorf("option %q: %w", name, err)
	}
	return h, nil
}

func globOption(o *options.Options, name string) (glob.Glob, error) {
	s, err := o.String(name, "")
	if err != nil || s == "" {
		return nil, err
	}
	g, err := glob.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("option %q: %w", name, err)
	}
	return g, nil
}

// Local returns the environment of the children.
func (l *LocalScopeTrigger) Local() *actor.Env { return l.local }

func (l *LocalScopeTrigger) SetUp(ctx context.Context) error {
	outer := l.Env()

	var vars *variables.Store
	switch l.VariablesScope {
	case ScopeShare:
		vars = outer.Variables
	case ScopeCopy:
		vars = variables.New()
		vars.Assign(outer.Variables, l.VariablesFilter)
	default:
		vars = variables.New()
	}

	var store *storage.Storage
	switch l.StorageScope {
	case ScopeShare:
		store = outer.Storage
	case ScopeCopy:
		store = outer.Storage.Clone(l.StorageFilter)
	default:
		store = storage.New()
	}

	l.local = outer.Scoped(vars, store)
	for _, c := range l.list {
		actor.SetEnv(c, l.local)
	}
	return l.Trigger.SetUp(ctx)
}

func (l *LocalScopeTrigger) Execute(ctx context.Context) error {
	in := l.TakeInput()
	fired, err := l.fire(ctx, l, in)
	if err != nil {
		return err
	}
	if fired {
		l.propagate()
	}
	l.Push(in)
	return nil
}

func (l *LocalScopeTrigger) propagate() {
	outer := l.Env()
	if l.PropagateVars != nil && l.VariablesScope != ScopeShare {
		outer.Variables.Assign(l.local.Variables, l.PropagateVars)
	}
	if l.PropagateStorage != nil && l.StorageScope != ScopeShare {
		outer.Storage.Assign(l.local.Storage, l.PropagateStorage)
	}
}

func (l *LocalScopeTrigger) CleanUp() {
	l.Trigger.CleanUp()
	l.local = nil
}
