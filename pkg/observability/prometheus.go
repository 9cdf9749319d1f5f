package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records view, cache and HTTP events as Prometheus metrics.
// A single value implements [ViewHooks], [CacheHooks] and [HTTPHooks].
type PrometheusHooks struct {
	loads       *prometheus.CounterVec
	toggles     *prometheus.CounterVec
	layoutTime  prometheus.Histogram
	visible     prometheus.Gauge
	transitions *prometheus.CounterVec
	renderTime  *prometheus.HistogramVec
	cacheOps    *prometheus.CounterVec
	cacheBytes  prometheus.Counter
	httpReqs    *prometheus.CounterVec
	httpTime    *prometheus.HistogramVec
}

var (
	_ ViewHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks  = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if a collector is already registered, like
// [prometheus.MustRegister].
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prereqtree_loads_total",
			Help: "Payloads loaded into a tree, by outcome",
		}, []string{"outcome"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prereqtree_toggles_total",
			Help: "Node activations, by resulting state",
		}, []string{"state"}),
		layoutTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prereqtree_layout_duration_seconds",
			Help:    "Duration of layout passes",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prereqtree_visible_nodes",
			Help: "Visible nodes after the most recent layout pass",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prereqtree_transition_nodes_total",
			Help: "Nodes animated per phase",
		}, []string{"phase"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "prereqtree_render_duration_seconds",
			Help: "Duration of render surface generation",
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prereqtree_cache_operations_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prereqtree_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prereqtree_http_requests_total",
			Help: "Payload fetches and served requests, by host and status",
		}, []string{"host", "status"}),
		httpTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "prereqtree_http_request_duration_seconds",
			Help: "Duration of payload fetches and served requests",
		}, []string{"host"}),
	}
	reg.MustRegister(
		h.loads, h.toggles, h.layoutTime, h.visible, h.transitions,
		h.renderTime, h.cacheOps, h.cacheBytes, h.httpReqs, h.httpTime,
	)
	return h
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnLoad(_ context.Context, _ int, _ time.Duration, err error) {
	h.loads.WithLabelValues(outcome(err)).Inc()
}

func (h *PrometheusHooks) OnToggle(_ context.Context, _ int, collapsed bool, err error) {
	state := "expanded"
	switch {
	case err != nil:
		state = "error"
	case collapsed:
		state = "collapsed"
	}
	h.toggles.WithLabelValues(state).Inc()
}

func (h *PrometheusHooks) OnLayout(_ context.Context, visibleCount int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.layoutTime.Observe(d.Seconds())
	h.visible.Set(float64(visibleCount))
}

func (h *PrometheusHooks) OnTransition(_ context.Context, entering, updating, exiting int) {
	h.transitions.WithLabelValues("enter").Add(float64(entering))
	h.transitions.WithLabelValues("update").Add(float64(updating))
	h.transitions.WithLabelValues("exit").Add(float64(exiting))
}

func (h *PrometheusHooks) OnRender(_ context.Context, format string, d time.Duration, _ error) {
	h.renderTime.WithLabelValues(format).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, statusCode int, d time.Duration) {
	h.httpReqs.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
	h.httpTime.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpReqs.WithLabelValues(host, "error").Inc()
}
