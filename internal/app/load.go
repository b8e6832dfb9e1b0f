package app

import (
	"context"
	"fmt"
	"maps"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/variables"
)

// LoadFlow builds the flow tree from the configured flow file.
func (a *App) LoadFlow(ctx context.Context) (actor.Actor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading flow...", "flow_path", a.config.FlowPath)

	root, err := a.loader.LoadFile(ctx, a.config.FlowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	logger.Info("Flow loaded successfully.", "flow", root.Core().Name())
	return root, nil
}

// LoadVariables merges the bindings file with the explicit overrides.
func (a *App) LoadVariables(ctx context.Context) (map[string]string, error) {
	bindings := map[string]string{}
	if a.config.VarsPath != "" {
		loaded, err := variables.LoadFile(a.config.VarsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load variables: %w", err)
		}
		maps.Copy(bindings, loaded)
	}
	maps.Copy(bindings, a.config.Vars)
	ctxlog.FromContext(ctx).Debug("Variables loaded.", "count", len(bindings))
	return bindings, nil
}
