// Package metrics collects and exposes Prometheus metrics for the storefront.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentfront"

// Collector records storefront metrics. A nil *Collector is valid and
// records nothing, so components can be built without metrics in tests.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	ordersCreated   prometheus.Counter
	payments        *prometheus.CounterVec
	kycSubmissions  prometheus.Counter
	kycReviews      *prometheus.CounterVec
	panics          prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Calls to the marketplace backend, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Marketplace backend call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Rental orders created.",
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment confirmations checked, by result.",
		}, []string{"result"}),
		kycSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kyc_submissions_total",
			Help:      "KYC documents submitted.",
		}),
		kycReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kyc_reviews_total",
			Help:      "KYC submissions reviewed, by decision.",
		}, []string{"decision"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Handler panics turned into 500 responses.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.backendRequests,
		c.backendLatency,
		c.rateLimited,
		c.ordersCreated,
		c.payments,
		c.kycSubmissions,
		c.kycReviews,
		c.panics,
	)

	return c
}

// RecordHTTPRequest records one served request. route is the matched route
// pattern, never the raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, route string, status int, latency time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// RecordBackendCall records one call to the marketplace backend.
func (c *Collector) RecordBackendCall(endpoint string, err error, latency time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	c.backendLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

func (c *Collector) RecordRateLimited() {
	if c == nil {
		return
	}
	c.rateLimited.Inc()
}

func (c *Collector) RecordOrderCreated() {
	if c == nil {
		return
	}
	c.ordersCreated.Inc()
}

// RecordPaymentVerification records a payment confirmation check.
func (c *Collector) RecordPaymentVerification(ok bool) {
	if c == nil {
		return
	}
	result := "valid"
	if !ok {
		result = "invalid"
	}
	c.payments.WithLabelValues(result).Inc()
}

func (c *Collector) RecordKYCSubmission() {
	if c == nil {
		return
	}
	c.kycSubmissions.Inc()
}

func (c *Collector) RecordKYCReview(decision string) {
	if c == nil {
		return
	}
	c.kycReviews.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordPanic() {
	if c == nil {
		return
	}
	c.panics.Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
