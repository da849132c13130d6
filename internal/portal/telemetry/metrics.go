// Package telemetry holds the portal's Prometheus metrics. A nil *Metrics is
// valid and records nothing, which keeps service tests free of registries.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

type Metrics struct {
	registry *prometheus.Registry

	ClaimsTotal          *prometheus.CounterVec
	AccessChecksTotal    *prometheus.CounterVec
	PermissionCacheTotal *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HousekeepingRemoved  *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ClaimsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_claims_total",
				Help: "Sign-in callbacks by claim outcome",
			},
			[]string{"outcome"},
		),
		AccessChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_access_checks_total",
				Help: "Access guard decisions",
			},
			[]string{"result"},
		),
		PermissionCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_permission_cache_total",
				Help: "Permission set cache lookups",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		HousekeepingRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_housekeeping_removed_total",
				Help: "Rows removed by housekeeping",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ClaimsTotal,
		m.AccessChecksTotal,
		m.PermissionCacheTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HousekeepingRemoved,
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveClaim(outcome string) {
	if m == nil {
		return
	}
	m.ClaimsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAccessCheck(allowed bool) {
	if m == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.AccessChecksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePermissionCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PermissionCacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHousekeeping(kind string, removed int64) {
	if m == nil || removed <= 0 {
		return
	}
	m.HousekeepingRemoved.WithLabelValues(kind).Add(float64(removed))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware counts requests by method and status. Paths are not used as
// a label to keep cardinality bounded.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &slogx.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.Status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
