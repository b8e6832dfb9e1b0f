package flowconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Loader turns flow definitions into actor trees using the types known to
// a registry.
type Loader struct {
	reg     *registry.Registry
	evalCtx *hcl.EvalContext
}

// NewLoader creates a loader resolving type names through reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{reg: reg, evalCtx: newEvalContext(os.Environ())}
}

func newEvalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			env[pair[0]] = cty.StringVal(pair[1])
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}

// LoadFile reads and builds the flow defined in path.
func (l *Loader) LoadFile(ctx context.Context, path string) (actor.Actor, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file %s: %w", path, err)
	}
	return l.Load(ctx, src, path)
}

// Load builds the flow defined in src. filename is used in error messages.
func (l *Loader) Load(ctx context.Context, src []byte, filename string) (actor.Actor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Flow loader started.", "file", filename)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse flow file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("flow file %s is not native HCL syntax", filename)
	}

	if len(body.Attributes) > 0 {
		return nil, fmt.Errorf("flow file %s: attributes are only allowed inside the flow block", filename)
	}
	var flow *hclsyntax.Block
	for _, b := range body.Blocks {
		if b.Type != "flow" {
			return nil, fmt.Errorf("%s: unexpected %q block, expected flow", b.DefRange(), b.Type)
		}
		if flow != nil {
			return nil, fmt.Errorf("%s: only one flow block is allowed per file", b.DefRange())
		}
		flow = b
	}
	if flow == nil {
		return nil, fmt.Errorf("flow file %s defines no flow block", filename)
	}
	if len(flow.Labels) != 1 {
		return nil, fmt.Errorf("%s: flow block needs exactly one label, the flow name", flow.DefRange())
	}

	b := &builder{loader: l}
	root, err := b.actor(ctx, "Flow", flow.Labels[0], flow)
	if err != nil {
		return nil, err
	}
	logger.Debug("Flow loaded.", "flow", root.Core().Name(), "actors", b.actors, "conditions", b.conditions)
	return root, nil
}
