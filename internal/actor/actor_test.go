package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/token"
)

type group struct {
	Base
	kids []Actor
}

func newGroup(name string, kids ...Actor) *group {
	g := &group{}
	g.SetName(name)
	for _, k := range kids {
		g.kids = append(g.kids, k)
		Attach(g, k)
	}
	return g
}

func (g *group) Size() int       { return len(g.kids) }
func (g *group) Get(i int) Actor { return g.kids[i] }
func (g *group) IndexOf(name string) int {
	for i, k := range g.kids {
		if k.Core().Name() == name {
			return i
		}
	}
	return -1
}

type standalone struct {
	Base
	run func() error
}

func (s *standalone) Execute(context.Context) error { return s.run() }

type sink struct {
	Base
	InputSlot
}

func (s *sink) Accepts() []token.Kind { return []token.Kind{token.KindString} }

type source struct {
	Base
	OutputQueue
}

func (s *source) Generates() []token.Kind { return nil }

type transformer struct {
	Base
	InputSlot
	OutputQueue
}

func (t *transformer) Accepts() []token.Kind   { return nil }
func (t *transformer) Generates() []token.Kind { return nil }

func named[T Actor](a T, name string) T {
	a.Core().SetName(name)
	return a
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleStandalone, RoleOf(&standalone{}))
	assert.Equal(t, RoleSource, RoleOf(&source{}))
	assert.Equal(t, RoleSink, RoleOf(&sink{}))
	assert.Equal(t, RoleTransformer, RoleOf(&transformer{}))
	assert.Equal(t, "transformer", RoleTransformer.String())
}

func TestFullName(t *testing.T) {
	leaf := named(&sink{}, "out.v2")
	root := newGroup("flow", newGroup("inner", leaf))

	assert.Equal(t, `flow.inner.out\.v2`, leaf.FullName())
	assert.Same(t, root, Root(leaf))
	assert.Equal(t, "flow", root.FullName())
}

func TestWalkAndVersion(t *testing.T) {
	a := named(&sink{}, "a")
	b := named(&sink{}, "b")
	inner := newGroup("inner", b)
	root := newGroup("root", a, inner)

	var visited []string
	Walk(root, func(n Actor) bool {
		visited = append(visited, n.Core().Name())
		return true
	})
	assert.Equal(t, []string{"root", "a", "inner", "b"}, visited)

	before := Version(b)
	Touch(inner)
	assert.Equal(t, before+1, Version(a))
}

func TestSetEnvReachesDescendants(t *testing.T) {
	leaf := named(&sink{}, "leaf")
	root := newGroup("root", newGroup("mid", leaf))
	env := NewEnv()
	SetEnv(root, env)
	assert.Same(t, env, leaf.Env())
}

func TestExecuteAnnotatesErrors(t *testing.T) {
	boom := errors.New("boom")
	leaf := named(&standalone{run: func() error { return boom }}, "leaf")
	newGroup("root", leaf)

	err := Execute(context.Background(), leaf)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "root.leaf: boom")

	var ne *NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, PhaseExecute, ne.Phase)
}

func TestAnnotateKeepsInnermostPath(t *testing.T) {
	inner := &NodeError{Path: "root.a.b", Phase: PhaseExecute, Err: errors.New("x")}
	outer := named(&standalone{}, "a")
	err := annotate(outer, PhaseExecute, inner)
	assert.Same(t, inner, err)
}

func TestExecuteRecoversPanic(t *testing.T) {
	leaf := named(&standalone{run: func() error { panic("kaputt") }}, "leaf")

	err := Execute(context.Background(), leaf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaf: panic: kaputt")
}

func TestExecuteSkipsStoppedActors(t *testing.T) {
	calls := 0
	leaf := named(&standalone{run: func() error { calls++; return nil }}, "leaf")
	leaf.Env().Stop("")

	require.NoError(t, Execute(context.Background(), leaf))
	assert.Zero(t, calls)
}

type recordingListener struct {
	pre, post int
	lastErr   error
}

func (l *recordingListener) PreExecute(context.Context, Actor) { l.pre++ }
func (l *recordingListener) PostExecute(_ context.Context, _ Actor, _ time.Duration, err error) {
	l.post++
	l.lastErr = err
}

func TestExecuteNotifiesListener(t *testing.T) {
	l := &recordingListener{}
	leaf := named(&standalone{run: func() error { panic("x") }}, "leaf")
	leaf.Env().SetListener(l)

	err := Execute(context.Background(), leaf)
	assert.Equal(t, 1, l.pre)
	assert.Equal(t, 1, l.post)
	assert.Equal(t, err, l.lastErr)
}

func TestInputChecksKinds(t *testing.T) {
	s := named(&sink{}, "s")

	err := Input(s, token.New(42))
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrIncompatible)
	assert.Nil(t, s.CurrentInput())

	require.NoError(t, Input(s, token.New("ok")))
	assert.Equal(t, "ok", s.TakeInput().Payload())
	assert.Nil(t, s.CurrentInput())
}

func TestOutputQueue(t *testing.T) {
	var q OutputQueue
	assert.False(t, q.HasPendingOutput())
	assert.Nil(t, q.Output())

	q.Push(token.New(1))
	q.Push(nil)
	q.Push(token.New(2))
	assert.Equal(t, 1, q.Output().Payload())
	assert.Equal(t, 2, q.Output().Payload())
	assert.False(t, q.HasPendingOutput())
}

func TestSetUpSkipsDisabledActors(t *testing.T) {
	calls := 0
	leaf := named(&standalone{run: func() error { calls++; return nil }}, "leaf")
	leaf.SetSkip(true)

	require.NoError(t, SetUp(context.Background(), leaf))
	require.NoError(t, Execute(context.Background(), leaf))
	assert.Zero(t, calls)
	assert.Equal(t, PhaseConstructed, leaf.Phase())
}

func TestCleanUpSwallowsPanics(t *testing.T) {
	p := &panicky{}
	p.SetName("p")
	assert.NotPanics(t, func() { CleanUp(context.Background(), p) })
	assert.Equal(t, PhaseCleanUp, p.Phase())
}

type panicky struct{ Base }

func (p *panicky) CleanUp() { panic("nope") }

func TestEnvFirstErrorWins(t *testing.T) {
	env := NewEnv()
	first, second := errors.New("first"), errors.New("second")
	env.Fail(first)
	env.Fail(second)
	env.Stop("ignored")

	assert.True(t, env.Stopped())
	assert.Equal(t, first, env.Err())
	assert.Empty(t, env.StopReason())

	env.Variables.Set("x", "1")
	env.Reset(map[string]string{"y": "2"})
	assert.False(t, env.Stopped())
	assert.NoError(t, env.Err())
	assert.False(t, env.Variables.Has("x"))
	v, ok := env.Variables.Get("y")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestEnvScopedSharesStopState(t *testing.T) {
	env := NewEnv()
	local := env.Scoped(env.Variables, env.Storage)
	local.Stop("done")
	assert.True(t, env.Stopped())
	assert.Equal(t, "done", env.StopReason())
}

func TestHandleError(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	t.Run("always stop", func(t *testing.T) {
		a := named(&standalone{}, "a")
		env := a.Env()
		assert.True(t, env.HandleError(ctx, a, boom))
		assert.Equal(t, boom, env.Err())
	})

	t.Run("actors decide", func(t *testing.T) {
		a := named(&standalone{}, "a")
		env := a.Env()
		env.SetErrorHandling(ActorsDecide)
		assert.False(t, env.HandleError(ctx, a, boom))
		assert.False(t, env.Stopped())

		a.SetStopFlowOnError(true)
		assert.True(t, env.HandleError(ctx, a, boom))
		assert.True(t, env.Stopped())
	})
}

func TestParseErrorHandling(t *testing.T) {
	m, err := ParseErrorHandling("")
	require.NoError(t, err)
	assert.Equal(t, AlwaysStop, m)

	m, err = ParseErrorHandling("actors_decide")
	require.NoError(t, err)
	assert.Equal(t, "actors_decide", m.String())

	_, err = ParseErrorHandling("sometimes")
	assert.Error(t, err)
}

func TestGuardedEnv(t *testing.T) {
	ctx := context.Background()
	env := NewEnv()
	guarded := env.Guarded()
	guarded.SetErrorHandling(ActorsDecide)

	a := named(&standalone{}, "a")
	a.SetEnv(guarded)
	boom := errors.New("boom")

	assert.True(t, guarded.HandleError(ctx, a, boom))
	assert.Equal(t, boom, guarded.Caught())
	assert.True(t, guarded.Stopped())
	assert.True(t, a.IsStopped())
	assert.False(t, env.Stopped())
	assert.NoError(t, env.Err())

	guarded.Release()
	assert.False(t, guarded.Stopped())

	local := guarded.Scoped(guarded.Variables, guarded.Storage)
	local.Fail(boom)
	assert.Equal(t, boom, guarded.Caught())
}
