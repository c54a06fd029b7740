// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the API records.
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	upvoteToggles     *prometheus.CounterVec
	paymentsConfirmed *prometheus.CounterVec
	bibleFallbacks    prometheus.Counter
	llmRequests       *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holynav_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "holynav_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upvoteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holynav_forum_upvote_toggles_total",
			Help: "Upvote toggles by target (post, comment) and direction.",
		}, []string{"target", "direction"}),
		paymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holynav_payments_confirmed_total",
			Help: "Payments transitioned to paid, by confirmation source.",
		}, []string{"source"}),
		bibleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holynav_bible_fallbacks_total",
			Help: "Chapter or verse requests served from the local fallback.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holynav_llm_requests_total",
			Help: "News analysis LLM calls by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.upvoteToggles,
		c.paymentsConfirmed,
		c.bibleFallbacks,
		c.llmRequests,
	)

	return c
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordUpvoteToggle(target string, upvoted bool) {
	direction := "removed"
	if upvoted {
		direction = "added"
	}
	c.upvoteToggles.WithLabelValues(target, direction).Inc()
}

func (c *Collector) RecordPaymentConfirmed(source string) {
	c.paymentsConfirmed.WithLabelValues(source).Inc()
}

func (c *Collector) RecordBibleFallback() {
	c.bibleFallbacks.Inc()
}

func (c *Collector) RecordLLMRequest(result string) {
	c.llmRequests.WithLabelValues(result).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
