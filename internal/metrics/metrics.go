// Package metrics collects Prometheus metrics for the proxy, login and share routes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the transformer pipeline and handlers report into.
type Recorder interface {
	RecordTransformerSelected(name string)
	RecordTransformerFailure(name string)
	RecordProxyRequest(statusCode int, duration time.Duration)
	RecordLogin(provider string, ok bool)
	RecordShareOperation(op string)
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	transformerSelected *prometheus.CounterVec
	transformerFailed   *prometheus.CounterVec
	proxyStatus         *prometheus.CounterVec
	proxyLatency        prometheus.Histogram
	logins              *prometheus.CounterVec
	shareOps            *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transformerSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatcraft_transformer_selected_total",
			Help: "Proxy requests served by each transformer.",
		}, []string{"transformer"}),
		transformerFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatcraft_transformer_failures_total",
			Help: "Transformer failures that fell through to the next candidate.",
		}, []string{"transformer"}),
		proxyStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatcraft_proxy_responses_total",
			Help: "Proxy responses by status code.",
		}, []string{"status_code"}),
		proxyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatcraft_proxy_latency_seconds",
			Help:    "Time spent resolving a proxied URL.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatcraft_logins_total",
			Help: "OAuth logins by provider and outcome.",
		}, []string{"provider", "outcome"}),
		shareOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatcraft_share_operations_total",
			Help: "Share store operations.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.transformerSelected,
		c.transformerFailed,
		c.proxyStatus,
		c.proxyLatency,
		c.logins,
		c.shareOps,
	)

	return c
}

func (c *Collector) RecordTransformerSelected(name string) {
	c.transformerSelected.WithLabelValues(name).Inc()
}

func (c *Collector) RecordTransformerFailure(name string) {
	c.transformerFailed.WithLabelValues(name).Inc()
}

func (c *Collector) RecordProxyRequest(statusCode int, duration time.Duration) {
	c.proxyStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.proxyLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordLogin(provider string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	c.logins.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) RecordShareOperation(op string) {
	c.shareOps.WithLabelValues(op).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are optional.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordTransformerSelected(string)      {}
func (Nop) RecordTransformerFailure(string)       {}
func (Nop) RecordProxyRequest(int, time.Duration) {}
func (Nop) RecordLogin(string, bool)              {}
func (Nop) RecordShareOperation(string)           {}
