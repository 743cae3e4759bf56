package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcomes
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medibook_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medibook_booking_transitions_total",
			Help: "Booking status transitions by target status",
		},
		[]string{"status"},
	)

	SlotLockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medibook_slot_lock_contention_total",
			Help: "Booking attempts rejected because another request held the slot lock",
		},
	)

	AvailabilityCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medibook_availability_cache_total",
			Help: "Availability cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medibook_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medibook_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordTransition(status string) {
	BookingTransitions.WithLabelValues(status).Inc()
}

func RecordLockContention() {
	SlotLockContention.Inc()
}

func RecordCacheLookup(result string) {
	AvailabilityCache.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
