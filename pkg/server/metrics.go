package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/transfocator/pkg/observability"
)

// Metrics exports pipeline, cache and HTTP events to Prometheus. It
// implements the observability hook interfaces; register it with
// [Metrics.Install].
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	lenses        prometheus.Histogram
	reports       prometheus.Counter
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	upstream      *prometheus.HistogramVec
	upstreamErrs  *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tfcalc",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tfcalc",
			Name:      "stage_errors_total",
			Help:      "Failed pipeline stages.",
		}, []string{"stage"}),
		lenses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tfcalc",
			Name:      "chain_lenses",
			Help:      "Active lenses per assembled chain.",
			Buckets:   prometheus.LinearBuckets(0, 5, 12),
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tfcalc",
			Name:      "reports_total",
			Help:      "Reports computed.",
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tfcalc",
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes.",
		}, []string{"kind", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tfcalc",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"kind"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tfcalc",
			Name:      "upstream_request_duration_seconds",
			Help:      "Requests to the optical-constants service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host", "code"}),
		upstreamErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tfcalc",
			Name:      "upstream_errors_total",
			Help:      "Failed requests to the optical-constants service.",
		}, []string{"host"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tfcalc",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	m.registry.MustRegister(
		m.stageDuration, m.stageErrors, m.lenses, m.reports,
		m.cacheEvents, m.cacheBytes, m.upstream, m.upstreamErrs, m.requests,
		collectors.NewGoCollector(),
	)
	return m
}

// Install registers m as the process-wide pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observeStage(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) OnAssembleStart(context.Context, int) {}

func (m *Metrics) OnAssembleComplete(_ context.Context, lensCount int, d time.Duration, err error) {
	m.observeStage("assemble", d, err)
	if err == nil {
		m.lenses.Observe(float64(lensCount))
	}
}

func (m *Metrics) OnPropagateStart(context.Context, int) {}

func (m *Metrics) OnPropagateComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.observeStage("propagate", d, err)
}

func (m *Metrics) OnReportComplete(_ context.Context, _ float64, d time.Duration, err error) {
	m.observeStage("report", d, err)
	if err == nil {
		m.reports.Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheEvents.WithLabelValues(kind, "set").Inc()
	m.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.upstream.WithLabelValues(host, strconv.Itoa(code)).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstreamErrs.WithLabelValues(host).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
