// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
)

type Config struct {
	Enabled *bool `hcl:"enabled,optional"`

	// Namespace prefixes every metric name.
	Namespace string `hcl:"namespace,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   helper.PointerOf(true),
		Namespace: "pipeline_steps",
	}
}

func (c *Config) Merge(z *Config) *Config {
	if c == nil {
		return z
	}

	result := *c

	if z == nil {
		return &result
	}
	if z.Enabled != nil {
		result.Enabled = z.Enabled
	}
	if z.Namespace != "" {
		result.Namespace = z.Namespace
	}

	return &result
}

// Outcome labels of the validation counter.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Metrics holds the service instruments and the registry they are
// registered with. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	validations  *prometheus.CounterVec
}

// New builds the instruments, or returns nil when metrics are disabled.
func New(cfg *Config) *Metrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Enabled != nil && !*cfg.Enabled {
		return nil
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_class"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_class"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validations_total",
				Help:      "Total number of step validations",
			},
			[]string{"step_type", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.httpDuration,
		m.httpRequests,
		m.validations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records the duration and count of every request, labelled by
// the chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusClass := strconv.Itoa(status/100) + "xx"

		m.httpDuration.WithLabelValues(r.Method, route, statusClass).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, route, statusClass).Inc()
	})
}

// ObserveValidation counts one validation of a step of the given type.
func (m *Metrics) ObserveValidation(stepType string, valid bool) {
	if m == nil {
		return
	}
	if stepType == "" {
		stepType = "unknown"
	}
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	m.validations.WithLabelValues(stepType, outcome).Inc()
}
