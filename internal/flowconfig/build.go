package flowconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/options"
	"github.com/zclconf/go-cty/cty"
)

// builder walks one flow definition.
type builder struct {
	loader     *Loader
	actors     int
	conditions int
}

func (b *builder) actor(ctx context.Context, typ, name string, block *hclsyntax.Block) (actor.Actor, error) {
	a, err := b.loader.reg.NewActor(typ)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", block.DefRange(), err)
	}
	a.Core().SetName(name)
	b.actors++
	ctxlog.FromContext(ctx).Debug("Building actor.", "type", typ, "name", name)

	opts, err := b.options(block.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: actor %q: %w", block.DefRange(), name, err)
	}
	if err := applyBase(a.Core(), opts); err != nil {
		return nil, fmt.Errorf("%s: actor %q: %w", block.DefRange(), name, err)
	}
	if err := configure(a, opts); err != nil {
		return nil, fmt.Errorf("%s: actor %q (%s): %w", block.DefRange(), name, typ, err)
	}

	for _, nested := range block.Body.Blocks {
		switch nested.Type {
		case "actor":
			if len(nested.Labels) != 2 {
				return nil, fmt.Errorf("%s: actor block needs a type and a name label", nested.DefRange())
			}
			h, ok := a.(actor.MutableHandler)
			if !ok {
				return nil, fmt.Errorf("%s: actor %q of type %s cannot hold actors", nested.DefRange(), name, typ)
			}
			child, err := b.actor(ctx, nested.Labels[0], nested.Labels[1], nested)
			if err != nil {
				return nil, err
			}
			if err := h.Add(child); err != nil {
				return nil, fmt.Errorf("%s: %w", nested.DefRange(), err)
			}
		case "condition":
			h, ok := a.(condition.Holder)
			if !ok {
				return nil, fmt.Errorf("%s: actor %q of type %s takes no conditions", nested.DefRange(), name, typ)
			}
			if err := b.attachCondition(ctx, h, nested); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%s: unexpected %q block in actor %q", nested.DefRange(), nested.Type, name)
		}
	}
	return a, nil
}

func (b *builder) attachCondition(ctx context.Context, h condition.Holder, block *hclsyntax.Block) error {
	if len(block.Labels) != 1 {
		return fmt.Errorf("%s: condition block needs exactly one label, the condition type", block.DefRange())
	}
	typ := block.Labels[0]
	c, err := b.loader.reg.NewCondition(typ)
	if err != nil {
		return fmt.Errorf("%s: %w", block.DefRange(), err)
	}
	b.conditions++

	opts, err := b.options(block.Body)
	if err != nil {
		return fmt.Errorf("%s: condition %s: %w", block.DefRange(), typ, err)
	}
	if err := configure(c, opts); err != nil {
		return fmt.Errorf("%s: condition %s: %w", block.DefRange(), typ, err)
	}

	for _, nested := range block.Body.Blocks {
		if nested.Type != "condition" {
			return fmt.Errorf("%s: unexpected %q block in condition %s", nested.DefRange(), nested.Type, typ)
		}
		inner, ok := c.(condition.Holder)
		if !ok {
			return fmt.Errorf("%s: condition %s takes no nested conditions", nested.DefRange(), typ)
		}
		if err := b.attachCondition(ctx, inner, nested); err != nil {
			return err
		}
	}
	if err := h.AddCondition(c); err != nil {
		return fmt.Errorf("%s: %w", block.DefRange(), err)
	}
	return nil
}

func (b *builder) options(body *hclsyntax.Body) (*options.Options, error) {
	values := make(map[string]cty.Value, len(body.Attributes))
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(b.loader.evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid value for %q: %w", name, diags)
		}
		values[name] = v
	}
	return options.New(values), nil
}

// applyBase reads the options every actor understands.
func applyBase(core *actor.Base, o *options.Options) error {
	skip, err := o.Bool("skip", false)
	if err != nil {
		return err
	}
	stop, err := o.Bool("stop_flow_on_error", false)
	if err != nil {
		return err
	}
	notes, err := o.String("annotations", "")
	if err != nil {
		return err
	}
	core.SetSkip(skip)
	core.SetStopFlowOnError(stop)
	core.SetAnnotations(notes)
	return nil
}

// configure hands o to v if it reads options and rejects attributes that
// nothing consumed.
func configure(v any, o *options.Options) error {
	if c, ok := v.(options.Configurable); ok {
		if err := c.Configure(o); err != nil {
			return err
		}
	}
	if unused := o.Unused(); len(unused) > 0 {
		return fmt.Errorf("unsupported option(s): %s", strings.Join(unused, ", "))
	}
	return nil
}
