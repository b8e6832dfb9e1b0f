package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/actorgrid/internal/ctxlog"
	"github.com/vk/actorgrid/internal/flowconfig"
	"github.com/vk/actorgrid/internal/metrics"
	"github.com/vk/actorgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	loader     *flowconfig.Loader
	metrics    *metrics.Listener
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, every module compiled into the binary is registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	// A broken registration is a programmer error, so we panic.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   flowconfig.NewLoader(reg),
		metrics:  metrics.New(),
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the execution metrics of the runs started by the app.
func (a *App) Metrics() *metrics.Listener {
	return a.metrics
}
