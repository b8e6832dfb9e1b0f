// Package metrics exposes flow execution statistics to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/executor"
)

const namespace = "actorgrid"

// Listener records actor executions and run outcomes. It implements
// actor.Listener and is safe for concurrent use.
type Listener struct {
	reg *prometheus.Registry

	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	runs       *prometheus.CounterVec
}

var _ actor.Listener = (*Listener)(nil)

// New creates a listener with its collectors registered on a fresh
// registry.
func New() *Listener {
	l := &Listener{
		reg: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_executions_total",
			Help:      "Number of actor executions by outcome.",
		}, []string{"actor", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_execution_seconds",
			Help:      "Time spent in a single actor execution.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"actor"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_executions_in_flight",
			Help:      "Number of actor executions currently running.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of finished flow runs by status.",
		}, []string{"status"}),
	}
	l.reg.MustRegister(l.executions, l.duration, l.inFlight, l.runs)
	return l
}

// Registry returns the registry holding the listener's collectors.
func (l *Listener) Registry() *prometheus.Registry { return l.reg }

// Handler serves the collected metrics in the Prometheus exposition format.
func (l *Listener) Handler() http.Handler {
	return promhttp.HandlerFor(l.reg, promhttp.HandlerOpts{})
}

func (l *Listener) PreExecute(context.Context, actor.Actor) {
	l.inFlight.Inc()
}

func (l *Listener) PostExecute(_ context.Context, a actor.Actor, elapsed time.Duration, err error) {
	l.inFlight.Dec()
	name := a.Core().FullName()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	l.executions.WithLabelValues(name, outcome).Inc()
	l.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveRun counts a finished run.
func (l *Listener) ObserveRun(res *executor.Result) {
	l.runs.WithLabelValues(res.Status.String()).Inc()
}
