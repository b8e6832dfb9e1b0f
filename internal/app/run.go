package app

import (
	"context"

	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/localexecutor"
)

// Run loads the configured flow and executes it once. Loading problems are
// returned as errors; the outcome of the run itself is the result.
func (a *App) Run(ctx context.Context) (*executor.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	bindings, err := a.LoadVariables(ctx)
	if err != nil {
		return nil, err
	}
	root, err := a.LoadFlow(ctx)
	if err != nil {
		return nil, err
	}

	exec := localexecutor.New(root,
		localexecutor.WithVariables(bindings),
		localexecutor.WithListener(a.metrics),
	)
	res := exec.Run(ctx)
	a.metrics.ObserveRun(res)

	a.logger.Debug("App.Run method finished.", "status", res.Status.String())
	return res, nil
}
