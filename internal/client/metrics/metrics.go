// Package metrics exposes cache and synchronizer counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics interface {
	CacheHit()
	NetworkFetch(source string)
	FetchFailed(source, reason string)
	StartMerge() Observer
	RowsPruned(kind string, n int64)
	EventApplied(kind string)
	StreamReconnect()
}

type Observer interface {
	Finish()
}

type PromMetrics struct {
	cacheHits        prometheus.Counter
	networkFetches   *prometheus.CounterVec
	fetchFailures    *prometheus.CounterVec
	mergeDuration    prometheus.Histogram
	rowsPruned       *prometheus.CounterVec
	eventsApplied    *prometheus.CounterVec
	streamReconnects prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{}

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tootcache_window_cache_hits_total",
		Help: "Timeline windows answered from the local cache.",
	})
	m.networkFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tootcache_network_fetches_total",
		Help: "Timeline pages fetched from the server.",
	}, []string{"source"})
	m.fetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tootcache_fetch_failures_total",
		Help: "Timeline page fetches that failed.",
	}, []string{"source", "reason"})
	m.mergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tootcache_merge_duration_seconds",
		Help:    "Duration of page merge transactions.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	m.rowsPruned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tootcache_rows_pruned_total",
		Help: "Rows removed by retention pruning.",
	}, []string{"kind"})
	m.eventsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tootcache_events_applied_total",
		Help: "Side-channel events applied to the cache.",
	}, []string{"kind"})
	m.streamReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tootcache_stream_reconnects_total",
		Help: "Streaming connection attempts after a failure.",
	})

	reg.MustRegister(m.cacheHits, m.networkFetches, m.fetchFailures, m.mergeDuration,
		m.rowsPruned, m.eventsApplied, m.streamReconnects)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *PromMetrics) CacheHit() { m.cacheHits.Inc() }

func (m *PromMetrics) NetworkFetch(source string) {
	m.networkFetches.WithLabelValues(source).Inc()
}

func (m *PromMetrics) FetchFailed(source, reason string) {
	m.fetchFailures.WithLabelValues(source, reason).Inc()
}

func (m *PromMetrics) StartMerge() Observer {
	return &observer{start: time.Now(), hist: m.mergeDuration}
}

func (m *PromMetrics) RowsPruned(kind string, n int64) {
	m.rowsPruned.WithLabelValues(kind).Add(float64(n))
}

func (m *PromMetrics) EventApplied(kind string) {
	m.eventsApplied.WithLabelValues(kind).Inc()
}

func (m *PromMetrics) StreamReconnect() { m.streamReconnects.Inc() }

type observer struct {
	start time.Time
	hist  prometheus.Observer
}

func (o *observer) Finish() {
	o.hist.Observe(time.Since(o.start).Seconds())
}

type nop struct{}

// Nop returns Metrics that record nothing.
func Nop() Metrics { return nop{} }

func (nop) CacheHit()                   {}
func (nop) NetworkFetch(string)         {}
func (nop) FetchFailed(string, string)  {}
func (nop) StartMerge() Observer        { return nopObserver{} }
func (nop) RowsPruned(string, int64)    {}
func (nop) EventApplied(string)         {}
func (nop) StreamReconnect()            {}

type nopObserver struct{}

func (nopObserver) Finish() {}
