// Package metrics declares the Prometheus collectors the admin sidecar
// exposes on /metrics, all namespaced under originhttpd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsAcceptedTotal counts every connection the listener hands
	// off to the worker pool.
	ConnectionsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "originhttpd",
		Name:      "connections_accepted_total",
		Help:      "Total number of client connections accepted",
	})

	// WorkerPoolQueueDepthGauge tracks the current depth of the worker
	// pool's connection queue.
	WorkerPoolQueueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "originhttpd",
		Name:      "worker_pool_queue_depth",
		Help:      "Current number of connections queued for a worker",
	})

	// ActiveWorkersGauge tracks how many pool workers are currently
	// executing a job (parsing a request or running a handler).
	ActiveWorkersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "originhttpd",
		Name:      "worker_pool_active_workers",
		Help:      "Current number of workers actively processing a connection",
	})

	// ResponsesTotal counts responses written by the origin listener,
	// partitioned by HTTP status code.
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "originhttpd",
		Name:      "responses_total",
		Help:      "Total number of HTTP responses written, by status code",
	}, []string{"status"})

	// CgiInvocationsTotal counts CGI script executions, partitioned by
	// outcome (ok, error).
	CgiInvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "originhttpd",
		Name:      "cgi_invocations_total",
		Help:      "Total number of CGI script invocations, by outcome",
	}, []string{"outcome"})

	// CgiActiveGauge tracks how many CGI subprocesses are currently
	// running, bounded by the configured concurrency limiter.
	CgiActiveGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "originhttpd",
		Name:      "cgi_active",
		Help:      "Current number of CGI subprocesses running",
	})

	// CgiWaitersGauge tracks how many callers are currently blocked
	// waiting for a free CGI concurrency slot.
	CgiWaitersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "originhttpd",
		Name:      "cgi_waiters",
		Help:      "Current number of callers waiting for a CGI concurrency slot",
	})
)
