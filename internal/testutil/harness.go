package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/app"
	"github.com/vk/actorgrid/internal/executor"
	"github.com/vk/actorgrid/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Flow file names understood by the harness.
const (
	FlowFile = "flow.hcl"
	VarsFile = "vars.yaml"
)

// HarnessResult holds the outcomes of a system test run.
type HarnessResult struct {
	LogOutput string
	// Err is set when the flow could not be loaded or the app did not start.
	Err    error
	Result *executor.Result
	App    *app.App
	// Recorded holds what the flow's Record actors received.
	Recorded *Recorder
}

// RunFlow writes files to a temporary directory, loads FlowFile (and
// VarsFile, if given) and runs it once with every compiled-in module plus
// the Record and NoOp test actors.
func RunFlow(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunFlowWithContext(context.Background(), t, files, nil, modules...)
}

// RunFlowWithContext is RunFlow with a caller-supplied context and
// variable overrides.
func RunFlowWithContext(ctx context.Context, t *testing.T, files map[string]string, vars map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	// 1. Write the flow files to a temporary directory.
	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	// 2. Configure the app.
	cfg := app.Config{
		FlowPath:  filepath.Join(tmpDir, FlowFile),
		Vars:      vars,
		LogLevel:  "debug",
		LogFormat: "text",
	}
	if _, ok := files[VarsFile]; ok {
		cfg.VarsPath = filepath.Join(tmpDir, VarsFile)
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	// 3. Register the compiled-in modules and the test actors.
	rec := NewRecorder()
	all := append(app.CoreModules(), &RecorderModule{Recorder: rec}, NoOpModule{})
	all = append(all, modules...)

	logBuffer := &SafeBuffer{}
	res := &HarnessResult{Recorded: rec}

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		res.App = app.NewApp(logBuffer, appConfig, all...)
	}()

	if res.App != nil {
		res.Result, res.Err = res.App.Run(ctx)
	}
	res.LogOutput = logBuffer.String()

	if os.Getenv("ACTORGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}
	return res
}
