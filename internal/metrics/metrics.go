// Package metrics collects and exposes Prometheus metrics for the auction
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service metrics.
type Collector struct {
	registry       *prometheus.Registry
	bidsAccepted   prometheus.Counter
	bidsRejected   *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		bidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctionhouse_bids_accepted_total",
			Help: "Total number of accepted bids",
		}),
		bidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctionhouse_bids_rejected_total",
			Help: "Total number of rejected bids by reason",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctionhouse_http_status_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auctionhouse_request_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.bidsAccepted,
		c.bidsRejected,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordBidAccepted counts an accepted bid.
func (c *Collector) RecordBidAccepted() {
	c.bidsAccepted.Inc()
}

// RecordBidRejected counts a rejected bid with its rejection reason.
func (c *Collector) RecordBidRejected(reason string) {
	c.bidsRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest counts a finished request and observes its latency.
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.requestLatency.Observe(duration.Seconds())
}

// Handler returns the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
