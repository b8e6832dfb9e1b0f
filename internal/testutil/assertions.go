package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/executor"
)

// AssertSucceeded fails the test unless the flow loaded and its run succeeded.
func AssertSucceeded(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.NoError(t, result.Err, "flow did not load")
	require.NotNil(t, result.Result)
	require.Equal(t, executor.StatusSucceeded, result.Result.Status, "run result: %s", result.Result)
}

// AssertFailedWith fails the test unless the run failed with a message
// containing want.
func AssertFailedWith(t *testing.T, result *HarnessResult, want string) {
	t.Helper()
	require.NoError(t, result.Err, "flow did not load")
	require.NotNil(t, result.Result)
	require.Equal(t, executor.StatusFailed, result.Result.Status, "run result: %s", result.Result)
	require.Contains(t, result.Result.Message, want)
}

// AssertRecorded compares what the Record actor with the given full name
// received.
func AssertRecorded(t *testing.T, result *HarnessResult, fullName string, want ...any) {
	t.Helper()
	if want == nil {
		want = []any{}
	}
	got := result.Recorded.Get(fullName)
	if got == nil {
		got = []any{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("%s received unexpected payloads (-want +got):\n%s", fullName, diff)
	}
}

// AssertActorLogged checks that the actor with the given full name logged msg.
func AssertActorLogged(t *testing.T, result *HarnessResult, fullName, msg string) {
	t.Helper()

	expected := fmt.Sprintf("actor=%s", fullName)
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, expected) && strings.Contains(line, msg) {
			return
		}
	}
	t.Fatalf("expected log line %q from %s was not found in logs", msg, fullName)
}
