package standard_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/localexecutor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/modules/standard"
)

type adder interface {
	actor.Actor
	Add(a actor.Actor) error
}

func compose[T adder](t *testing.T, h T, name string, kids ...actor.Actor) T {
	t.Helper()
	h.Core().SetName(name)
	for _, k := range kids {
		require.NoError(t, h.Add(k))
	}
	return h
}

// configured names a, applies opts and returns it.
func configured[T actor.Actor](t *testing.T, a T, name string, opts map[string]any) T {
	t.Helper()
	a.Core().SetName(name)
	if c, ok := any(a).(options.Configurable); ok {
		o := options.MustFromMap(opts)
		require.NoError(t, c.Configure(o))
		require.Empty(t, o.Unused())
	}
	return a
}

func runFlow(t *testing.T, kids ...actor.Actor) (*executor.Result, *actor.Env) {
	t.Helper()
	f := compose(t, control.NewFlow(), "flow", kids...)
	e := localexecutor.New(f)
	return e.Run(context.Background()), e.Env()
}

func stored(t *testing.T, env *actor.Env, key string) any {
	t.Helper()
	v, ok := env.Storage.Get(key)
	require.True(t, ok, "storage value %q not present", key)
	return v
}

func TestStringConstantsUpperCaseCollect(t *testing.T) {
	res, env := runFlow(t,
		configured(t, &standard.StringConstants{}, "src", map[string]any{"strings": []any{"a", "b", "c"}}),
		configured(t, &standard.UpperCase{}, "upper", nil),
		configured(t, &standard.Collect{}, "out", nil),
	)

	require.NoError(t, res.Error())
	if diff := cmp.Diff([]any{"A", "B", "C"}, stored(t, env, "out")); diff != "" {
		t.Errorf("collected mismatch (-want +got):\n%s", diff)
	}
}

func TestVariablesExpandAtExecution(t *testing.T) {
	trigger := compose(t, control.NewTrigger(), "trigger",
		configured(t, &standard.StringConstants{}, "msg", map[string]any{"strings": []any{"item ${i}"}}),
		configured(t, &standard.Collect{}, "log", map[string]any{"storage_name": "log"}),
	)
	res, env := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 3}),
		configured(t, &standard.SetVariable{}, "set", map[string]any{"var_name": "i"}),
		trigger,
	)

	require.NoError(t, res.Error())
	assert.Equal(t, []any{"item 1", "item 2", "item 3"}, stored(t, env, "log"))
	v, _ := env.Variables.Get("i")
	assert.Equal(t, "3", v)
}

func TestSetVariableWithValue(t *testing.T) {
	res, env := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 1}),
		configured(t, &standard.SetVariable{}, "set", map[string]any{"var_name": "state", "var_value": "seen ${missing}"}),
		configured(t, &standard.Null{}, "null", nil),
	)

	require.NoError(t, res.Error())
	v, _ := env.Variables.Get("state")
	assert.Equal(t, "seen ${missing}", v)
}

func TestForLoop(t *testing.T) {
	testCases := []struct {
		name string
		opts map[string]any
		want []any
	}{
		{"defaults", nil, []any{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"step", map[string]any{"lower": 0, "upper": 6, "step": 3}, []any{0, 3, 6}},
		{"countdown", map[string]any{"lower": 3, "upper": 1, "step": -1}, []any{3, 2, 1}},
		{"empty range", map[string]any{"lower": 5, "upper": 1}, []any{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, env := runFlow(t,
				configured(t, standard.NewForLoop(), "loop", tc.opts),
				configured(t, &standard.Collect{}, "out", nil),
			)
			require.NoError(t, res.Error())
			assert.Equal(t, tc.want, stored(t, env, "out"))
		})
	}
}

func TestForLoopZeroStep(t *testing.T) {
	res, _ := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"step": 0}),
		configured(t, &standard.Null{}, "null", nil),
	)
	assert.Equal(t, "flow.loop: step must not be zero", res.Message)
}

func TestIncrement(t *testing.T) {
	testCases := []struct {
		name   string
		amount float64
		want   []any
	}{
		{"whole", 2, []any{3, 4}},
		{"fraction", 0.5, []any{1.5, 2.5}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, env := runFlow(t,
				configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 2}),
				configured(t, standard.NewIncrement(), "inc", map[string]any{"increment": tc.amount}),
				configured(t, &standard.Collect{}, "out", nil),
			)
			require.NoError(t, res.Error())
			assert.Equal(t, tc.want, stored(t, env, "out"))
		})
	}
}

func TestIncrementRejectsStrings(t *testing.T) {
	res, _ := runFlow(t,
		configured(t, &standard.StringConstants{}, "src", map[string]any{"strings": []any{"a"}}),
		configured(t, standard.NewIncrement(), "inc", nil),
		configured(t, &standard.Null{}, "null", nil),
	)
	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Contains(t, res.Message, "incompatible")
}

func TestStorageRoundTrip(t *testing.T) {
	for _, cache := range []string{"", "recent"} {
		t.Run("cache="+cache, func(t *testing.T) {
			var kids []actor.Actor
			if cache != "" {
				kids = append(kids, configured(t, standard.NewInitStorageCache(), "init", map[string]any{"cache": cache, "size": 4}))
			}
			opts := map[string]any{"storage_name": "last", "cache": cache}
			kids = append(kids,
				configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 2}),
				compose(t, control.NewTee(), "keep", configured(t, &standard.SetStorageValue{}, "set", opts)),
				compose(t, control.NewTrigger(), "read",
					configured(t, &standard.GetStorageValue{}, "get", opts),
					configured(t, &standard.Collect{}, "out", map[string]any{"storage_name": "seen"}),
				),
				configured(t, &standard.Null{}, "null", nil),
			)

			res, env := runFlow(t, kids...)
			require.NoError(t, res.Error())
			assert.Equal(t, []any{1, 2}, stored(t, env, "seen"))
		})
	}
}

func TestStoragePlaceholdersInOptions(t *testing.T) {
	res, env := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 2}),
		compose(t, control.NewTee(), "keep",
			configured(t, &standard.SetStorageValue{}, "set", map[string]any{"storage_name": "last"}),
		),
		compose(t, control.NewTrigger(), "read",
			configured(t, &standard.StringConstants{}, "msg", map[string]any{"strings": []any{"got %{last} ${none}"}}),
			configured(t, &standard.Collect{}, "out", map[string]any{"storage_name": "seen"}),
		),
		configured(t, &standard.Null{}, "null", nil),
	)

	require.NoError(t, res.Error())
	assert.Equal(t, []any{"got 1 ${none}", "got 2 ${none}"}, stored(t, env, "seen"))
}

func TestSharedCollectUnderParallelBranch(t *testing.T) {
	branch := compose(t, control.NewBranch(), "fan",
		configured(t, &standard.Collect{}, "left", map[string]any{"storage_name": "all"}),
		configured(t, &standard.Collect{}, "right", map[string]any{"storage_name": "all"}),
	)
	branch.Workers = 2
	res, env := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"lower": 1, "upper": 300}),
		branch,
	)

	require.NoError(t, res.Error())
	assert.Len(t, stored(t, env, "all"), 600)
}

func TestSetStorageValueUnknownCache(t *testing.T) {
	res, _ := runFlow(t,
		configured(t, standard.NewForLoop(), "loop", map[string]any{"upper": 1}),
		configured(t, &standard.SetStorageValue{}, "set", map[string]any{"storage_name": "k", "cache": "nope"}),
	)
	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Contains(t, res.Message, "nope")
}

func TestMakeContainerAndPicker(t *testing.T) {
	picker := compose(t, control.NewContainerValuePicker(), "pick",
		configured(t, &standard.Collect{}, "alt", nil),
	)
	require.NoError(t, picker.Configure(options.MustFromMap(map[string]any{"value": "B", "switch_outputs": true})))

	res, env := runFlow(t,
		configured(t, &standard.MakeContainer{}, "make", map[string]any{"values": map[string]any{"A": 1, "B": 2}}),
		picker,
		configured(t, &standard.Collect{}, "default", nil),
	)

	require.NoError(t, res.Error())
	assert.Equal(t, []any{2}, stored(t, env, "alt"))
	assert.Equal(t, []any{}, stored(t, env, "default"))
}

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := configured(t, standard.NewDisplay(), "show", map[string]any{"prefix": "> "})
	d.Out = &buf

	res, _ := runFlow(t,
		configured(t, &standard.StringConstants{}, "src", map[string]any{"strings": []any{"a", "b"}}),
		d,
	)

	require.NoError(t, res.Error())
	assert.Equal(t, "> a\n> b\n", buf.String())
}
