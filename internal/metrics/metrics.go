// Package metrics exposes Prometheus collectors for settlement activity and HTTP traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flatwise"

// Settlement event labels.
const (
	EventBuyIn   = "buy_in"
	EventBuyOut  = "buy_out"
	EventMoveIn  = "move_in"
	EventMoveOut = "move_out"
	EventManual  = "manual"
)

// Metrics holds the collectors registered for one server.
type Metrics struct {
	registry *prometheus.Registry

	settlements     *prometheus.CounterVec
	ledgerEntries   *prometheus.CounterVec
	ledgerAmount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a registry with process and Go collectors plus the flatwise collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Committed membership changes by event.",
		}, []string{"event"}),
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Ledger entries committed by event.",
		}, []string{"event"}),
		ledgerAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_amount_total",
			Help:      "Sum of committed ledger entry amounts by event.",
		}, []string{"event"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.settlements,
		m.ledgerEntries,
		m.ledgerAmount,
		m.requestDuration,
	)
	return m
}

// ObserveSettlement records one committed event and the entries it produced.
// A nil receiver is a no-op.
func (m *Metrics) ObserveSettlement(event string, amounts ...float64) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(event).Inc()
	m.ledgerEntries.WithLabelValues(event).Add(float64(len(amounts)))
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	m.ledgerAmount.WithLabelValues(event).Add(sum)
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
