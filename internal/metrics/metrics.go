// Package metrics holds the Prometheus collectors for split and balance work.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

// Metrics groups the collectors registered on one registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	splitComputations  *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	balanceDuration    *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		splitComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_computations_total",
			Help:      "Split calculations by strategy and outcome.",
		}, []string{"strategy", "valid"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_lookups_total",
			Help:      "Balance cache lookups by result.",
		}, []string{"result"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_invalidations_total",
			Help:      "Balance cache entries dropped after a group changed.",
		}),
		balanceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_computation_seconds",
			Help:      "Time spent loading a group and computing balances or reports.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.splitComputations,
		m.cacheLookups,
		m.cacheInvalidations,
		m.balanceDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SplitComputed counts one split calculation.
func (m *Metrics) SplitComputed(strategy string, valid bool) {
	if m == nil {
		return
	}
	m.splitComputations.WithLabelValues(strategy, strconv.FormatBool(valid)).Inc()
}

// CacheLookup counts a balance cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CacheInvalidated counts one dropped cache entry.
func (m *Metrics) CacheInvalidated() {
	if m == nil {
		return
	}
	m.cacheInvalidations.Inc()
}

// ObserveBalance records how long operation took since start.
func (m *Metrics) ObserveBalance(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.balanceDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
