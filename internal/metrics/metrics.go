package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planetarium_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration observes request latency by method and route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planetarium_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ReservationsCreated counts successfully committed reservations.
	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planetarium_reservations_created_total",
			Help: "Total number of reservations committed",
		},
	)

	// SeatConflicts counts reservation attempts rejected because a seat was
	// already taken, including races lost at the storage constraint.
	SeatConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planetarium_seat_conflicts_total",
			Help: "Total number of reservation attempts that hit an occupied seat",
		},
	)
)
