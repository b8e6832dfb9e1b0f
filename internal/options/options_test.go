package options

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestGetters(t *testing.T) {
	o := New(map[string]cty.Value{
		"text":    cty.StringVal("hello"),
		"count":   cty.NumberIntVal(3),
		"ratio":   cty.NumberFloatVal(0.5),
		"enabled": cty.True,
		"wait":    cty.StringVal("250ms"),
		"names":   cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
		"unset":   cty.NullVal(cty.String),
		"ignored": cty.StringVal("x"),
	})

	s, err := o.String("text", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	n, err := o.Int("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := o.Float("ratio", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	b, err := o.Bool("enabled", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := o.Duration("wait", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	names, err := o.Strings("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	def, err := o.String("unset", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", def)
	assert.False(t, o.Has("unset"))

	assert.Equal(t, []string{"ignored", "unset"}, o.Unused())
}

func TestGetterErrors(t *testing.T) {
	o := New(map[string]cty.Value{
		"count": cty.StringVal("many"),
		"wait":  cty.StringVal("soon"),
	})

	_, err := o.Int("count", 0)
	assert.ErrorContains(t, err, `option "count"`)

	_, err = o.Duration("wait", 0)
	assert.ErrorContains(t, err, `option "wait"`)
}

func TestNativeConversion(t *testing.T) {
	in := map[string]any{
		"n":    1,
		"f":    1.5,
		"s":    "x",
		"list": []any{"a", 2},
		"obj":  map[string]any{"k": true},
	}
	o, err := FromMap(in)
	require.NoError(t, err)

	got := map[string]any{}
	for _, name := range o.Names() {
		v, err := o.Any(name)
		require.NoError(t, err)
		got[name] = v
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("native values mismatch (-want +got):\n%s", diff)
	}
}

func TestMustFromMapPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustFromMap(map[string]any{"ch": make(chan int)}) })
}
