package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/localexecutor"
	"github.com/vk/actorgrid/internal/metrics"
	tu "github.com/vk/actorgrid/internal/testutil"
)

func runWithListener(t *testing.T, l *metrics.Listener) {
	t.Helper()
	f := tu.Named(control.NewFlow(), "flow")
	require.NoError(t, f.Add(tu.NewSource("src", "a", "b")))
	require.NoError(t, f.Add(tu.NewFail("fail", "b")))
	require.NoError(t, f.Add(tu.NewCollector("out")))
	f.ErrorHandling = actor.ActorsDecide

	res := localexecutor.New(f, localexecutor.WithListener(l)).Run(context.Background())
	require.NoError(t, res.Error())
	l.ObserveRun(res)
}

func TestListenerCountsExecutions(t *testing.T) {
	l := metrics.New()
	runWithListener(t, l)

	want := `
# HELP actorgrid_actor_executions_total Number of actor executions by outcome.
# TYPE actorgrid_actor_executions_total counter
actorgrid_actor_executions_total{actor="flow",outcome="ok"} 1
actorgrid_actor_executions_total{actor="flow.fail",outcome="error"} 1
actorgrid_actor_executions_total{actor="flow.fail",outcome="ok"} 1
actorgrid_actor_executions_total{actor="flow.out",outcome="ok"} 1
actorgrid_actor_executions_total{actor="flow.src",outcome="ok"} 2
# HELP actorgrid_actor_executions_in_flight Number of actor executions currently running.
# TYPE actorgrid_actor_executions_in_flight gauge
actorgrid_actor_executions_in_flight 0
# HELP actorgrid_runs_total Number of finished flow runs by status.
# TYPE actorgrid_runs_total counter
actorgrid_runs_total{status="succeeded"} 1
`
	err := testutil.GatherAndCompare(l.Registry(), strings.NewReader(want),
		"actorgrid_actor_executions_total",
		"actorgrid_actor_executions_in_flight",
		"actorgrid_runs_total",
	)
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(l.Registry(), "actorgrid_actor_execution_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestHandlerServesMetrics(t *testing.T) {
	l := metrics.New()
	runWithListener(t, l)

	srv := httptest.NewServer(l.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `actorgrid_runs_total{status="succeeded"} 1`)
}
