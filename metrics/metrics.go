// Package metrics exposes Prometheus instrumentation for the aggregation
// pipeline on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	FetchAttempts *prometheus.CounterVec // source label
	FetchFailures *prometheus.CounterVec // source label

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	StaleServes prometheus.Counter

	RequestDuration *prometheus.HistogramVec // route label
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_upstream_fetches_total",
			Help: "Upstream fetch operations, including retried ones.",
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_upstream_failures_total",
			Help: "Upstream fetches that failed after exhausting retries.",
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aggregator_cache_hits_total",
			Help: "Queries answered from a fresh cache entry.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aggregator_cache_misses_total",
			Help: "Queries that required an upstream refresh.",
		}),
		StaleServes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aggregator_stale_serves_total",
			Help: "Queries answered from a stale entry after a refresh failure.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aggregator_request_duration_seconds",
			Help:    "End-to-end duration of API requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.FetchAttempts, c.FetchFailures,
		c.CacheHits, c.CacheMisses, c.StaleServes,
		c.RequestDuration,
	)
	return c
}

// Handler serves the exposition format for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
