// Package metrics expone en Prometheus las decisiones del guard, las cascadas y las peticiones HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

var (
	_ ports.DecisionObserver = (*Metrics)(nil)
	_ ports.CascadeObserver  = (*Metrics)(nil)
)

// Metrics agrupa los colectores de la aplicación sobre un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	AuthzDecisions  *prometheus.CounterVec
	CascadeTotal    *prometheus.CounterVec
	CascadeDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New crea y registra los colectores. Incluye los de runtime de Go y del proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthzDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistica_authz_decisions_total",
				Help: "Decisiones del guard por rol, recurso, operación y resultado",
			},
			[]string{"role", "kind", "operation", "outcome"},
		),
		CascadeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistica_cascade_total",
				Help: "Cascadas de borrado por tipo de raíz y resultado",
			},
			[]string{"kind", "outcome"},
		),
		CascadeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logistica_cascade_duration_seconds",
				Help:    "Duración de las cascadas de borrado",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistica_http_requests_total",
				Help: "Peticiones HTTP por método, ruta y estado",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logistica_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthzDecisions,
		m.CascadeTotal,
		m.CascadeDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveDecision implementa ports.DecisionObserver.
func (m *Metrics) ObserveDecision(role entity.Role, op access.Operation, kind access.ResourceKind, d access.Decision) {
	m.AuthzDecisions.WithLabelValues(role.String(), string(kind), string(op), d.Outcome()).Inc()
}

// ObserveCascade implementa ports.CascadeObserver.
func (m *Metrics) ObserveCascade(kind access.ResourceKind, outcome string, elapsed time.Duration) {
	m.CascadeTotal.WithLabelValues(string(kind), outcome).Inc()
	m.CascadeDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// Handler devuelve el endpoint de exposición del registro.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware instrumenta las peticiones de fiber. Usa la ruta registrada (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
