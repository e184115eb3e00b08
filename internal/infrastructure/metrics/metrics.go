// Package metrics exports engine activity as Prometheus series.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"lenoa-backend/internal/domain/event"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lenoa"

type Metrics struct {
	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
	keeper   *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// New registers every collector with reg. A nil reg uses a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "events_total",
			Help:      "Committed ledger events segmented by type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "failures_total",
			Help:      "Rejected or failed ledger operations segmented by operation and error code.",
		}, []string{"operation", "code"}),
		keeper: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keeper",
			Name:      "liquidations_total",
			Help:      "Liquidation attempts made by the keeper segmented by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests segmented by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(m.events, m.failures, m.keeper, m.requests, m.latency)
	return m
}

// Emit counts a committed event. It never fails.
func (m *Metrics) Emit(_ context.Context, ev event.Event) error {
	if m == nil {
		return nil
	}
	m.events.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

func (m *Metrics) ObserveFailure(operation, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.failures.WithLabelValues(operation, code).Inc()
}

// ObserveLiquidation records one keeper attempt. Outcomes should be stable
// strings such as "liquidated", "skipped" or "failed".
func (m *Metrics) ObserveLiquidation(outcome string) {
	if m == nil {
		return
	}
	m.keeper.WithLabelValues(outcome).Inc()
}

// Middleware records status and latency per matched route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
