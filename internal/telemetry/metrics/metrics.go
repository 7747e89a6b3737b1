// Package metrics exposes the Prometheus counters and histograms
// instrumenting the cache proxy's read/write path, modeled on the
// counter/histogram naming and bucket choices dittofs uses for its own
// cache layer (pkg/metrics/prometheus).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every metric emitted by the cache proxy. A nil *Metrics
// is valid and every method on it is a no-op, so components can be
// constructed with metrics disabled at zero overhead.
type Metrics struct {
	cacheRequests    *prometheus.CounterVec
	cacheFillBytes   prometheus.Histogram
	upstreamDuration *prometheus.HistogramVec
	evictions        prometheus.Counter
	cachedBlocks     prometheus.Gauge
	usageQueueDepth  prometheus.Gauge
}

// New registers and returns a Metrics bound to reg. Pass
// prometheus.DefaultRegisterer in production, or a fresh
// prometheus.NewRegistry() in tests that must not pollute the global
// registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bossphorus_cache_requests_total",
				Help: "Cuboid requests served, by layer and outcome.",
			},
			[]string{"layer", "outcome"}, // layer: local|upstream; outcome: hit|miss
		),
		cacheFillBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bossphorus_cache_fill_bytes",
				Help:    "Size in bytes of cuboids written back to the local cache after an upstream fetch.",
				Buckets: []float64{4096, 32768, 131072, 524288, 1048576, 4194304, 16777216},
			},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bossphorus_upstream_fetch_duration_milliseconds",
				Help:    "Latency of upstream relay fetches, by outcome.",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"outcome"}, // ok|error
		),
		evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bossphorus_evictions_total",
				Help: "Cuboids removed from the local cache by the eviction strategy.",
			},
		),
		cachedBlocks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bossphorus_cached_blocks",
				Help: "Current number of cuboids tracked in the metadata store.",
			},
		),
		usageQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bossphorus_usage_queue_depth",
				Help: "Approximate number of pending entries in the usage pipeline channel.",
			},
		),
	}
}

// RecordCacheRequest records a single cuboid lookup at layer ("local" or
// "upstream"), hit or miss.
func (m *Metrics) RecordCacheRequest(layer string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheRequests.WithLabelValues(layer, outcome).Inc()
}

// RecordCacheFill records a write-back of size bytes into the local cache.
func (m *Metrics) RecordCacheFill(bytes int) {
	if m == nil {
		return
	}
	m.cacheFillBytes.Observe(float64(bytes))
}

// RecordUpstreamFetch records the duration of an upstream relay call.
func (m *Metrics) RecordUpstreamFetch(duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamDuration.WithLabelValues(outcome).Observe(float64(duration.Microseconds()) / 1000.0)
}

// RecordEviction increments the eviction counter by n.
func (m *Metrics) RecordEviction(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evictions.Add(float64(n))
}

// SetCachedBlocks sets the current cached-block gauge.
func (m *Metrics) SetCachedBlocks(n int64) {
	if m == nil {
		return
	}
	m.cachedBlocks.Set(float64(n))
}

// SetUsageQueueDepth sets the usage-pipeline queue-depth gauge.
func (m *Metrics) SetUsageQueueDepth(n int) {
	if m == nil {
		return
	}
	m.usageQueueDepth.Set(float64(n))
}
