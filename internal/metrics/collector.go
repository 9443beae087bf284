// Package metrics exposes Prometheus counters for workflow runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/taskgrid/internal/graph"
)

const namespace = "taskgrid"

// Collector counts graph events and run outcomes. It implements
// graph.Observer.
type Collector struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	edges       prometheus.Counter
	pruned      prometheus.Counter
	runs        *prometheus.CounterVec
}

var _ graph.Observer = (*Collector)(nil)

// New creates a Collector with its own registry, including the Go runtime
// and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_transitions_total",
			Help:      "Node status changes, by new status.",
		}, []string{"status"}),
		edges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_total",
			Help:      "Call edges recorded in the graph.",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_pruned_total",
			Help:      "Speculative nodes removed after their parent completed.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Workflow runs, by mode and outcome.",
		}, []string{"mode", "outcome"}),
	}
	c.registry.MustRegister(
		c.transitions,
		c.edges,
		c.pruned,
		c.runs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// OnEvent implements graph.Observer.
func (c *Collector) OnEvent(e graph.Event) {
	switch e.Kind {
	case graph.EventEdgeAdded:
		c.edges.Inc()
	case graph.EventStatusChanged:
		c.transitions.WithLabelValues(e.Status.String()).Inc()
	case graph.EventNodePruned:
		c.pruned.Inc()
	}
}

// ObserveRun records the outcome of one run.
func (c *Collector) ObserveRun(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.runs.WithLabelValues(mode, outcome).Inc()
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
