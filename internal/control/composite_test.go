package control_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/localexecutor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/testutil"
)

// setter writes Key=Value into both variables and storage of its scope.
type setter struct {
	actor.Base
	Key, Value string
}

func (s *setter) Execute(context.Context) error {
	s.Env().Variables.Set(s.Key, s.Value)
	s.Env().Storage.Put(s.Key, s.Value)
	return nil
}

// reader records what it sees of a variable.
type reader struct {
	actor.Base
	Name string
	Seen []string
}

func (r *reader) Execute(context.Context) error {
	v, _ := r.Env().Variables.Get(r.Name)
	r.Seen = append(r.Seen, v)
	return nil
}

func TestIfThenElse(t *testing.T) {
	ite := compose(t, control.NewIfThenElse(), "ite",
		testutil.NewUpper("then"),
		testutil.NewFanout("else", 1),
	)
	require.NoError(t, ite.AddCondition(expr(`input == "b"`)))
	out := testutil.NewCollector("out")
	f := newFlow(t, testutil.NewSource("src", "a", "b"), ite, out)

	require.NoError(t, run(f).Error())
	assert.Equal(t, []any{"a-0", "B"}, out.Got())
}

func TestIfThenElseNeedsCondition(t *testing.T) {
	ite := compose(t, control.NewIfThenElse(), "ite", testutil.NewUpper("then"))
	f := newFlow(t, testutil.NewSource("src", "a"), ite, testutil.NewCollector("out"))

	res := run(f)
	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Equal(t, "flow.ite: no condition configured", res.Message)
}

func TestSwitch(t *testing.T) {
	testCases := []struct {
		name        string
		withDefault bool
		want        []any
	}{
		{"with default", true, []any{"A", "b-0", "c-0", "c-1"}},
		{"without default", false, []any{"A", "b-0"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cases := []actor.Actor{testutil.NewUpper("upper"), testutil.NewFanout("once", 1)}
			if tc.withDefault {
				cases = append(cases, testutil.NewFanout("twice", 2))
			}
			sw := compose(t, control.NewSwitch(), "switch", cases...)
			require.NoError(t, sw.AddCondition(expr(`input == "a"`)))
			require.NoError(t, sw.AddCondition(expr(`input == "b"`)))
			out := testutil.NewCollector("out")
			f := newFlow(t, testutil.NewSource("src", "a", "b", "c"), sw, out)

			require.NoError(t, run(f).Error())
			assert.Equal(t, tc.want, out.Got())
		})
	}
}

func TestSwitchCaseCount(t *testing.T) {
	sw := compose(t, control.NewSwitch(), "switch",
		testutil.NewUpper("a"), testutil.NewUpper("b"), testutil.NewUpper("c"))
	require.NoError(t, sw.AddCondition(condition.True{}))
	f := newFlow(t, testutil.NewSource("src", "a"), sw, testutil.NewCollector("out"))

	res := run(f)
	assert.Equal(t, "flow.switch: 1 conditions need 1 or 2 cases, got 3", res.Message)
}

func TestTee(t *testing.T) {
	inner := testutil.NewCollector("inner")
	out := testutil.NewCollector("out")
	f := newFlow(t,
		testutil.NewSource("src", "a", "b"),
		compose(t, control.NewTee(), "tee", testutil.NewUpper("upper"), inner),
		out,
	)

	require.NoError(t, run(f).Error())
	assert.Equal(t, []any{"A", "B"}, inner.Got())
	assert.Equal(t, []any{"a", "b"}, out.Got())
}

func TestSequence(t *testing.T) {
	inner := testutil.NewCollector("inner")
	f := newFlow(t,
		testutil.NewSource("src", "a"),
		compose(t, control.NewSequence(), "seq", testutil.NewUpper("upper"), inner),
	)

	require.NoError(t, run(f).Error())
	assert.Equal(t, []any{"A"}, inner.Got())
}

func TestSubProcess(t *testing.T) {
	out := testutil.NewCollector("out")
	f := newFlow(t,
		testutil.NewSource("src", "a", "b"),
		compose(t, control.NewSubProcess(), "sub", testutil.NewUpper("upper"), testutil.NewFanout("fan", 2)),
		out,
	)

	require.NoError(t, run(f).Error())
	assert.Equal(t, []any{"A-0", "A-1", "B-0", "B-1"}, out.Got())
}

func TestSequenceSource(t *testing.T) {
	out := testutil.NewCollector("out")
	f := newFlow(t,
		compose(t, control.NewSequenceSource(), "gen", testutil.NewSource("src", "x", "y"), testutil.NewUpper("upper")),
		out,
	)

	require.NoError(t, run(f).Error())
	assert.Equal(t, []any{"X", "Y"}, out.Got())
}

func TestLocalScopeTrigger(t *testing.T) {
	testCases := []struct {
		name         string
		opts         map[string]any
		wantSeen     string
		wantStored   bool
		wantOuterVar bool
	}{
		{
			name:     "empty scope",
			opts:     map[string]any{},
			wantSeen: "",
		},
		{
			name:     "copied variables",
			opts:     map[string]any{"variables_scope": "copy", "variables_filter": "out*"},
			wantSeen: "1",
		},
		{
			name:       "propagated storage",
			opts:       map[string]any{"propagate_storage": "key*"},
			wantStored: true,
		},
		{
			name:         "shared scope",
			opts:         map[string]any{"variables_scope": "share", "storage_scope": "share"},
			wantSeen:     "1",
			wantStored:   true,
			wantOuterVar: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &reader{Name: "outer"}
			r.SetName("reader")
			s := &setter{Key: "key1", Value: "v"}
			s.SetName("setter")
			lst := compose(t, control.NewLocalScopeTrigger(), "local", r, s)
			require.NoError(t, lst.Configure(options.MustFromMap(tc.opts)))
			f := newFlow(t, testutil.NewSource("src", "a"), lst, testutil.NewCollector("out"))

			e := localexecutor.New(f, localexecutor.WithVariables(map[string]string{"outer": "1"}))
			require.NoError(t, e.Run(context.Background()).Error())

			assert.Equal(t, []string{tc.wantSeen}, r.Seen)
			assert.Equal(t, tc.wantStored, e.Env().Storage.Has("key1"))
			assert.Equal(t, tc.wantOuterVar, e.Env().Variables.Has("key1"))
		})
	}
}

func TestLocalScopeTriggerRejectsBadScope(t *testing.T) {
	lst := control.NewLocalScopeTrigger()
	err := lst.Configure(options.MustFromMap(map[string]any{"storage_scope": "borrow"}))
	assert.ErrorContains(t, err, `option "storage_scope"`)
}

func TestVariablesAreReadAtExecution(t *testing.T) {
	s := &setter{Key: "mode", Value: "loud"}
	s.SetName("setter")
	trigger := compose(t, control.NewTrigger(), "trigger", s)
	require.NoError(t, trigger.AddCondition(expr(`input == "b"`)))
	ite := compose(t, control.NewIfThenElse(), "ite", testutil.NewUpper("upper"), testutil.NewFanout("plain", 1))
	require.NoError(t, ite.AddCondition(&condition.VariableEquals{Name: "mode", Value: "loud"}))
	out := testutil.NewCollector("out")
	f := newFlow(t, testutil.NewSource("src", "a", "b", "c"), trigger, ite, out)

	res := localexecutor.New(f, localexecutor.WithVariables(map[string]string{"mode": "quiet"})).Run(context.Background())
	require.NoError(t, res.Error())
	assert.Equal(t, []any{"a-0", "B", "C"}, out.Got())
}

func TestTryCatch(t *testing.T) {
	tc := compose(t, control.NewTryCatch(), "try",
		testutil.NewFail("risky", "b"),
		testutil.NewUpper("fallback"),
	)
	tc.StoreError = true
	out := testutil.NewCollector("out")
	f := newFlow(t, testutil.NewSource("src", "a", "b", "c"), tc, out)

	e := localexecutor.New(f)
	res := e.Run(context.Background())
	require.Equal(t, executor.StatusSucceeded, res.Status, res.String())
	assert.Equal(t, []any{"a", "B", "c"}, out.Got())
	msg, ok := e.Env().Variables.Get("trycatch")
	require.True(t, ok)
	assert.Equal(t, "flow.try.risky: cannot handle b", msg)
}

func TestTryCatchGuardsNestedFailures(t *testing.T) {
	tc := compose(t, control.NewTryCatch(), "try",
		compose(t, control.NewSubProcess(), "body", testutil.NewFail("risky", "b"), testutil.NewUpper("upper")),
	)
	out := testutil.NewCollector("out")
	f := newFlow(t, testutil.NewSource("src", "a", "b", "c"), tc, out)

	res := run(f)
	require.Equal(t, executor.StatusSucceeded, res.Status, res.String())
	assert.Equal(t, []any{"A", "C"}, out.Got())
}

func TestBranch(t *testing.T) {
	for _, workers := range []int{1, 2, 0} {
		left := testutil.NewCollector("left")
		right := testutil.NewCollector("right")
		b := compose(t, control.NewBranch(), "branch", left, right)
		b.Workers = workers
		f := newFlow(t, testutil.NewSource("src", "a", "b"), b)

		require.NoError(t, run(f).Error())
		assert.Equal(t, []any{"a", "b"}, left.Got())
		assert.Equal(t, []any{"a", "b"}, right.Got())
	}
}

func TestBranchFailure(t *testing.T) {
	b := compose(t, control.NewBranch(), "branch",
		testutil.NewCollector("ok"),
		compose(t, control.NewSequence(), "bad", testutil.NewFail("fail", "a"), testutil.NewCollector("sink")),
	)
	b.Workers = 2
	f := newFlow(t, testutil.NewSource("src", "a"), b)

	res := run(f)
	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Equal(t, "flow.branch.bad.fail: cannot handle a", res.Message)
}

func TestBranchRejectsSources(t *testing.T) {
	b := compose(t, control.NewBranch(), "branch", testutil.NewSource("gen"))
	f := newFlow(t, testutil.NewSource("src", "a"), b)

	res := run(f)
	assert.Contains(t, res.Message, `branch "gen" does not accept input`)
}
