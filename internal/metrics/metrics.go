// Package metrics defines the prometheus collectors shared across the
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseClients is the number of pooled clients the registry ended up
	// with after initialization (0 means degraded mode).
	DatabaseClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gatehouse_database_clients",
		Help: "Number of registered database clients",
	})

	// LoginsTotal counts login attempts by result (success, invalid, error).
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	// RegistrationsTotal counts registration attempts by result.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_registrations_total",
		Help: "Registration attempts by result",
	}, []string{"result"})

	// CircuitBreakerState is the session store breaker state
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gatehouse_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"component"})

	// CircuitBreakerStateChanges counts breaker transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_circuit_breaker_state_changes_total",
		Help: "Circuit breaker state transitions",
	}, []string{"component", "state"})
)
