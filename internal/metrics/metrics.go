// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts HTTP requests by method, route template and status
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infratrack_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// httpRequestDuration tracks request latency per route
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "infratrack_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// mutationsTotal counts persistence mutations by entity, operation and result
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infratrack_mutations_total",
		Help: "Total record mutations by entity, operation and result",
	}, []string{"entity", "operation", "result"})

	// inventoryBuildsTotal counts inventory builds by outcome
	inventoryBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infratrack_inventory_builds_total",
		Help: "Total inventory builds by outcome (hosts, empty, degraded)",
	}, []string{"outcome"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// HTTPRequests returns the request counter for one label set.
func HTTPRequests(method, route, status string) prometheus.Counter {
	return httpRequestsTotal.WithLabelValues(method, route, status)
}

// ObserveMutation records the outcome of a create, update or delete.
func ObserveMutation(entity, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutationsTotal.WithLabelValues(entity, operation, result).Inc()
}

// ObserveInventoryBuild records the outcome of an inventory build.
func ObserveInventoryBuild(outcome string) {
	inventoryBuildsTotal.WithLabelValues(outcome).Inc()
}
