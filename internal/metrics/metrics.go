// Package metrics exposes Prometheus collectors for HTTP traffic and tree operations.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-file-tree/internal/model"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	treeOps         *prometheus.CounterVec
}

// New builds collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filetree_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filetree_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		treeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filetree_tree_operations_total",
			Help: "Tree store operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	registry.MustRegister(m.requests, m.requestDuration, m.treeOps)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method string, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}

	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTreeOp counts one store operation, classifying err into an outcome.
func (m *Metrics) ObserveTreeOp(operation string, err error) {
	if m == nil {
		return
	}

	m.treeOps.WithLabelValues(operation, Outcome(err)).Inc()
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNameConflict):
		return "conflict"
	case errors.Is(err, model.ErrNegativeSize):
		return "invalid"
	case errors.Is(err, model.ErrFolderNotFound), errors.Is(err, model.ErrFileNotFound):
		return "not_found"
	default:
		return "error"
	}
}
