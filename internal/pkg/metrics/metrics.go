// Package metrics exposes Prometheus instruments for the HTTP API and the planning pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeEmpty   = "empty"
)

// Metrics owns every instrument of the service. Instances are independent so
// tests can build one per registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	plansTotal       *prometheus.CounterVec
	planDuration     prometheus.Histogram
	routesPlanned    prometheus.Counter
	flaggedGroups    prometheus.Counter
	adjustmentsTotal *prometheus.CounterVec
	deliveriesTotal  prometheus.Counter
}

// New registers the instruments on a fresh registry with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the instruments on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		plansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_plans_total",
				Help: "Planning runs by outcome",
			},
			[]string{"outcome"},
		),
		planDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trip_plan_duration_seconds",
				Help:    "Wall time of one planning run",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		routesPlanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "routes_planned_total",
				Help: "Routes produced by planning runs",
			},
		),
		flaggedGroups: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trip_groups_flagged_total",
				Help: "Trip groups outside the SKU target range or spread limit",
			},
		),
		adjustmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_adjustments_total",
				Help: "Route adjustments by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		deliveriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "deliveries_completed_total",
				Help: "Stops marked delivered",
			},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.plansTotal,
		m.planDuration,
		m.routesPlanned,
		m.flaggedGroups,
		m.adjustmentsTotal,
		m.deliveriesTotal,
	)

	return m
}

// Middleware records request count, latency and concurrency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "/metrics" || path == "/health" {
				return next(c)
			}
			if path == "" {
				path = c.Request().URL.Path
			}

			m.httpRequestsInFlight.Inc()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			m.httpRequestsInFlight.Dec()
			status := strconv.Itoa(c.Response().Status)
			m.httpRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			m.httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObservePlan records one planning run.
func (m *Metrics) ObservePlan(outcome string, elapsed time.Duration, routes, flagged int) {
	m.plansTotal.WithLabelValues(outcome).Inc()
	m.planDuration.Observe(elapsed.Seconds())
	m.routesPlanned.Add(float64(routes))
	m.flaggedGroups.Add(float64(flagged))
}

// ObserveAdjustment records one adjustment attempt from source (http or telemetry).
func (m *Metrics) ObserveAdjustment(source, outcome string) {
	m.adjustmentsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveDelivery records one completed stop.
func (m *Metrics) ObserveDelivery() {
	m.deliveriesTotal.Inc()
}
