// Package metrics owns the prometheus collectors served at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "persona"

var (
	registry = prometheus.NewRegistry()

	quotaDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_decisions_total",
		Help:      "Quota decisions by outcome and limiting window.",
	}, []string{"outcome", "window"})

	quotaCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_cache_lookups_total",
		Help:      "Quota cache lookups by result.",
	}, []string{"result"})

	counterFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_fallbacks_total",
		Help:      "Counter operations served by the in-memory tier.",
	}, []string{"operation"})

	counterDegraded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "counter_store_degraded",
		Help:      "1 while the durable counter store is bypassed.",
	})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Model provider call latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider", "outcome"})

	toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Tool calls requested by the model.",
	}, []string{"tool", "outcome"})

	prunedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_records_pruned_total",
		Help:      "Stale rate-limit records removed by housekeeping.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		quotaDecisions,
		quotaCacheLookups,
		counterFallbacks,
		counterDegraded,
		upstreamDuration,
		toolCalls,
		prunedRecords,
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Registry exposes the collectors for tests.
func Registry() *prometheus.Registry {
	return registry
}

func ObserveDecision(allowed bool, window string) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	quotaDecisions.WithLabelValues(outcome, window).Inc()
}

func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	quotaCacheLookups.WithLabelValues(result).Inc()
}

func ObserveFallback(operation string) {
	counterFallbacks.WithLabelValues(operation).Inc()
}

func SetDegraded(degraded bool) {
	if degraded {
		counterDegraded.Set(1)
		return
	}
	counterDegraded.Set(0)
}

func ObserveUpstream(provider, outcome string, elapsed time.Duration) {
	upstreamDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

func ObserveToolCall(tool, outcome string) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

func AddPruned(n int64) {
	if n > 0 {
		prunedRecords.Add(float64(n))
	}
}
