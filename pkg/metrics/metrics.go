// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitecore"

// Metrics owns a registry so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	writes          *prometheus.CounterVec
	ruleDecisions   *prometheus.CounterVec
	partialFailures *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Documents written, by entity and operation.",
		}, []string{"entity", "op"}),
		ruleDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_decisions_total",
			Help:      "Derivation rule outcomes.",
		}, []string{"rule", "outcome"}),
		partialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_failures_total",
			Help:      "Multi-document operations whose follow-up write failed.",
		}, []string{"entity"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.Registry.MustRegister(
		m.writes,
		m.ruleDecisions,
		m.partialFailures,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Write counts a persisted document. Safe on a nil receiver.
func (m *Metrics) Write(entity, op string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity, op).Inc()
}

// RuleDecision counts one outcome of a derivation rule.
func (m *Metrics) RuleDecision(rule, outcome string) {
	if m == nil {
		return
	}
	m.ruleDecisions.WithLabelValues(rule, outcome).Inc()
}

// PartialFailure counts an operation that left its first write committed.
func (m *Metrics) PartialFailure(entity string) {
	if m == nil {
		return
	}
	m.partialFailures.WithLabelValues(entity).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
