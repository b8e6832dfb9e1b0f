package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/actorgrid/internal/app"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/registry"
)

// Exit codes.
const (
	ExitFailed  = 1
	ExitUsage   = 2
	ExitStopped = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type runFlags struct {
	vars            []string
	varsPath        string
	logFormat       string
	logLevel        string
	healthcheckPort int
}

// NewRootCommand builds the actorgrid command tree writing to outW. Without
// modules, the flows run with every compiled-in module.
func NewRootCommand(outW io.Writer, modules ...registry.Module) *cobra.Command {
	root := &cobra.Command{
		Use:   "actorgrid",
		Short: "Run dataflow flows of actors",
		Long: "actorgrid executes flows: trees of sources, transformers, sinks and\n" +
			"control actors declared in HCL, passing tokens depth-first from actor to actor.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	root.AddCommand(newRunCommand(outW, modules), newActorsCommand(modules))
	return root
}

func newRunCommand(outW io.Writer, modules []registry.Module) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run FLOW_FILE",
		Short: "Load a flow definition and execute it once",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("run expects exactly one flow file, got %d arguments", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args[0])
			if err != nil {
				return err
			}
			return runFlow(cmd.Context(), outW, cfg, modules)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVar(&f.vars, "var", nil, "Set a flow variable, as name=value. Repeatable; wins over --vars.")
	fs.StringVar(&f.varsPath, "vars", "", "Path to a YAML file with initial flow variables.")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	fs.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	return cmd
}

// config validates the flags and turns them into an app configuration.
func (f *runFlags) config(flowPath string) (*app.Config, error) {
	vars := make(map[string]string, len(f.vars))
	for _, kv := range f.vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid --var %q: expected name=value", kv)}
		}
		vars[name] = value
	}

	cfg, err := app.NewConfig(app.Config{
		FlowPath:        flowPath,
		VarsPath:        f.varsPath,
		Vars:            vars,
		LogFormat:       strings.ToLower(f.logFormat),
		LogLevel:        strings.ToLower(f.logLevel),
		HealthcheckPort: f.healthcheckPort,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, nil
}

func runFlow(ctx context.Context, outW io.Writer, cfg *app.Config, modules []registry.Module) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a := app.NewApp(outW, cfg, modules...)
	res, err := a.Run(ctx)
	if err != nil {
		return &ExitError{Code: ExitFailed, Message: err.Error()}
	}

	switch res.Status {
	case executor.StatusFailed:
		return &ExitError{Code: ExitFailed, Message: res.String()}
	case executor.StatusStopped:
		return &ExitError{Code: ExitStopped, Message: res.String()}
	}
	return nil
}

func newActorsCommand(modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "actors",
		Short: "List the registered actor and condition types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms := modules
			if len(ms) == 0 {
				ms = app.CoreModules()
			}
			reg := registry.New(ms...)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Actors:")
			for _, name := range reg.ActorTypes() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "Conditions:")
			for _, name := range reg.ConditionTypes() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
