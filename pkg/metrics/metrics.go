package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the permission service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PermissionChecks *prometheus.CounterVec
	PermissionWrites *prometheus.CounterVec
}

// New creates a private registry and registers all collectors on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PermissionChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tarl_permission_checks_total",
				Help: "Permission decisions by result (allowed, denied, error)",
			},
			[]string{"result"},
		),
		PermissionWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tarl_permission_writes_total",
				Help: "Permission and menu writes by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
	reg.MustRegister(
		m.PermissionChecks,
		m.PermissionWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCheck counts one CanPerform decision
func (m *Metrics) ObserveCheck(allowed bool, err error) {
	if m == nil {
		return
	}
	result := "denied"
	switch {
	case err != nil:
		result = "error"
	case allowed:
		result = "allowed"
	}
	m.PermissionChecks.WithLabelValues(result).Inc()
}

// ObserveWrite counts one write of the given kind
func (m *Metrics) ObserveWrite(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.PermissionWrites.WithLabelValues(kind, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
