package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics records outcomes of the reservation engine.
type ReservationMetrics struct {
	requests  *prometheus.CounterVec
	approvals *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewReservationMetrics registers the reservation metrics on reg. A nil
// registerer yields a no-op recorder.
func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	if reg == nil {
		return &ReservationMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_requests_total",
		Help: "Reservation requests by result and rejection reason.",
	}, []string{"result", "reason"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_approvals_total",
		Help: "Reservation approvals by resulting status.",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservation_operation_duration_seconds",
		Help:    "Duration of reservation engine operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(requests, approvals, duration)
	return &ReservationMetrics{
		requests:  requests,
		approvals: approvals,
		duration:  duration,
	}
}

// IncAccepted counts a persisted reservation.
func (m *ReservationMetrics) IncAccepted() {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues("accepted", "none").Inc()
}

// IncRejected counts a reservation refused for reason.
func (m *ReservationMetrics) IncRejected(reason string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues("rejected", normalizeLabel(reason)).Inc()
}

// IncApproval counts an approval decision.
func (m *ReservationMetrics) IncApproval(status string) {
	if m == nil || m.approvals == nil {
		return
	}
	m.approvals.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveDuration records how long operation took.
func (m *ReservationMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
