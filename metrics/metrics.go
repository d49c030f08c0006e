// Package metrics exposes Prometheus counters for inbound requests and for
// every upstream credential attempt.
//
// All methods are safe on a nil *Collector, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arabic_analyzer"

type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	attempts *prometheus.CounterVec
}

// NewCollector registers the collectors on registry, or on a fresh
// registry when nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of handled HTTP requests",
			},
			[]string{"route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				// upstream calls take up to 30s per credential
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 90},
			},
			[]string{"route"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_attempts_total",
				Help:      "Upstream attempts by credential position (1-based) and result",
			},
			[]string{"credential", "result"},
		),
	}
	registry.MustRegister(c.requests, c.latency, c.attempts)
	return c
}

// ObserveAttempt matches gemini.AttemptHook.
func (c *Collector) ObserveAttempt(index int, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.attempts.WithLabelValues(strconv.Itoa(index+1), result).Inc()
}

func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		c.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
	return http.HandlerFunc(fn)
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
