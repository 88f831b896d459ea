package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Metrics collects request and gateway write metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	writes   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "record_writes_total",
			Help:      "Gateway writes by collection and operation.",
		}, []string{"collection", "op"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.writes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records every request under its chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// EventSink counts gateway writes and forwards to next
func (m *Metrics) EventSink(next portfolio.EventSink) portfolio.EventSink {
	if next == nil {
		next = portfolio.NewNoopEventSink()
	}
	return &metricsSink{writes: m.writes, next: next}
}

type metricsSink struct {
	writes *prometheus.CounterVec
	next   portfolio.EventSink
}

func (s *metricsSink) RecordCreated(ctx context.Context, r portfolio.Record) error {
	s.writes.WithLabelValues(string(r.Collection()), "create").Inc()
	return s.next.RecordCreated(ctx, r)
}

func (s *metricsSink) RecordUpdated(ctx context.Context, r portfolio.Record) error {
	s.writes.WithLabelValues(string(r.Collection()), "update").Inc()
	return s.next.RecordUpdated(ctx, r)
}

func (s *metricsSink) RecordDeleted(ctx context.Context, c portfolio.Collection, id uuid.UUID) error {
	s.writes.WithLabelValues(string(c), "delete").Inc()
	return s.next.RecordDeleted(ctx, c, id)
}
