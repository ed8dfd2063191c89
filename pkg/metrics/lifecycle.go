package metrics

import "github.com/prometheus/client_golang/prometheus"

// LifecycleMetrics counts request status transitions and stock reservations.
type LifecycleMetrics struct {
	transitions  *prometheus.CounterVec
	reservations *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gudang_request_transitions_total",
		Help: "Request status transitions by source, target and outcome.",
	}, []string{"from", "to", "outcome"})
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gudang_inventory_reservations_total",
		Help: "Inventory reservation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, reservations)
	return &LifecycleMetrics{
		transitions:  transitions,
		reservations: reservations,
	}
}

// ObserveTransition records a transition attempt. outcome is "ok" or an error code.
func (m *LifecycleMetrics) ObserveTransition(from, to, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), normalizeLabel(outcome)).Inc()
}

// ObserveReservation records a reservation attempt.
func (m *LifecycleMetrics) ObserveReservation(outcome string) {
	if m == nil || m.reservations == nil {
		return
	}
	m.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}
