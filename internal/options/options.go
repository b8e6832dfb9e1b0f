// Package options gives actors and conditions typed access to their
// configuration attributes.
//
// Values are held as cty values, the representation produced by the HCL
// flow loader, and converted on access. Every getter marks its attribute as
// used so the loader can reject attributes no component understands.
package options

import (
	"fmt"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Configurable is implemented by components that read options.
type Configurable interface {
	Configure(o *Options) error
}

// Options is a set of named configuration values.
type Options struct {
	values map[string]cty.Value
	used   map[string]bool
}

// New wraps values. A nil map yields empty options.
func New(values map[string]cty.Value) *Options {
	if values == nil {
		values = map[string]cty.Value{}
	}
	return &Options{values: values, used: map[string]bool{}}
}

// FromMap builds options from native Go values. It is meant for
// constructing actors programmatically.
func FromMap(m map[string]any) (*Options, error) {
	values := make(map[string]cty.Value, len(m))
	for k, v := range m {
		cv, err := FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", k, err)
		}
		values[k] = cv
	}
	return New(values), nil
}

// MustFromMap is FromMap for tests and static tables.
func MustFromMap(m map[string]any) *Options {
	o, err := FromMap(m)
	if err != nil {
		panic(err)
	}
	return o
}

func (o *Options) lookup(name string) (cty.Value, bool) {
	v, ok := o.values[name]
	if !ok || v.IsNull() {
		return cty.NilVal, false
	}
	o.used[name] = true
	return v, true
}

// Has reports whether name is set to a non-null value.
func (o *Options) Has(name string) bool {
	v, ok := o.values[name]
	return ok && !v.IsNull()
}

// Names returns all attribute names, sorted.
func (o *Options) Names() []string {
	names := make([]string, 0, len(o.values))
	for k := range o.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Unused returns the attributes no getter has read, sorted.
func (o *Options) Unused() []string {
	var names []string
	for k := range o.values {
		if !o.used[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func (o *Options) String(name, def string) (string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return def, fmt.Errorf("option %q: %w", name, err)
	}
	return sv.AsString(), nil
}

func (o *Options) Bool(name string, def bool) (bool, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	var b bool
	bv, err := convert.Convert(v, cty.Bool)
	if err == nil {
		err = gocty.FromCtyValue(bv, &b)
	}
	if err != nil {
		return def, fmt.Errorf("option %q: %w", name, err)
	}
	return b, nil
}

func (o *Options) Int(name string, def int) (int, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	var i int
	nv, err := convert.Convert(v, cty.Number)
	if err == nil {
		err = gocty.FromCtyValue(nv, &i)
	}
	if err != nil {
		return def, fmt.Errorf("option %q: %w", name, err)
	}
	return i, nil
}

func (o *Options) Float(name string, def float64) (float64, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	var f float64
	nv, err := convert.Convert(v, cty.Number)
	if err == nil {
		err = gocty.FromCtyValue(nv, &f)
	}
	if err != nil {
		return def, fmt.Errorf("option %q: %w", name, err)
	}
	return f, nil
}

// Duration reads a Go duration string such as "1m30s".
func (o *Options) Duration(name string, def time.Duration) (time.Duration, error) {
	s, err := o.String(name, "")
	if err != nil || s == "" {
		return def, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("option %q: %w", name, err)
	}
	return d, nil
}

// Strings reads a list of strings.
func (o *Options) Strings(name string) ([]string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	lv, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("option %q: %w", name, err)
	}
	var out []string
	for it := lv.ElementIterator(); it.Next(); {
		_, e := it.Element()
		if e.IsNull() {
			return nil, fmt.Errorf("option %q: null element", name)
		}
		out = append(out, e.AsString())
	}
	return out, nil
}

// Any reads a value of arbitrary shape as its native Go counterpart.
func (o *Options) Any(name string) (any, error) {
	v, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	n, err := ToNative(v)
	if err != nil {
		return nil, fmt.Errorf("option %q: %w", name, err)
	}
	return n, nil
}
