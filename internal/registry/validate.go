package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/actorgrid/internal/ctxlog"
)

// Validate checks every registered constructor: it must return a value and
// a fresh instance on every call, since actors carry per-node state.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.ActorTypes() {
		a, b := r.actors[name](), r.actors[name]()
		switch {
		case a == nil || b == nil:
			errs = append(errs, fmt.Sprintf("actor type '%s': constructor returned nil", name))
		case a == b:
			errs = append(errs, fmt.Sprintf("actor type '%s': constructor returned a shared instance", name))
		}
	}
	for _, name := range r.ConditionTypes() {
		if r.conditions[name]() == nil {
			errs = append(errs, fmt.Sprintf("condition type '%s': constructor returned nil", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation successful.", "actors", len(r.actors), "conditions", len(r.conditions))
	return nil
}
