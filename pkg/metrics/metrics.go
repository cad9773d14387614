package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// Business metrics
	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of booking requests created",
		},
	)

	BookingAcceptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_accepts_total",
			Help: "Total number of booking acceptance attempts by outcome",
		},
		[]string{"outcome"}, // won, conflict, error
	)

	BookingsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Total number of bookings rejected by drivers",
		},
	)

	BookingsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Total number of bookings cancelled by riders",
		},
	)

	RidesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rides_created_total",
			Help: "Total number of rides created",
		},
		[]string{"origin"}, // driver, passenger
	)

	// Sweeper metrics
	SweeperRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_runs_total",
			Help: "Total number of expiry sweeps executed",
		},
		[]string{"trigger"}, // scheduled, manual
	)

	SweeperDeletedBookingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_deleted_bookings_total",
			Help: "Total number of expired bookings deleted by the sweeper",
		},
	)

	SweeperDeletedRidesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_deleted_rides_total",
			Help: "Total number of stale rides deleted by the sweeper",
		},
	)

	SweeperSkippedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_skipped_records_total",
			Help: "Total number of records skipped by the sweeper due to per-record failures",
		},
	)

	SweeperRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweeper_run_duration_seconds",
			Help:    "Duration of a full expiry sweep in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Messaging metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of lifecycle events published",
		},
		[]string{"event", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics.
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAccept records the outcome of a booking acceptance attempt.
func RecordAccept(outcome string) {
	BookingAcceptsTotal.WithLabelValues(outcome).Inc()
}

// RecordSweep records one sweep run.
func RecordSweep(trigger string, duration time.Duration, deletedBookings, deletedRides int) {
	SweeperRunsTotal.WithLabelValues(trigger).Inc()
	SweeperRunDuration.Observe(duration.Seconds())
	SweeperDeletedBookingsTotal.Add(float64(deletedBookings))
	SweeperDeletedRidesTotal.Add(float64(deletedRides))
}

// RecordEventPublish records a lifecycle event publish attempt.
func RecordEventPublish(event string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EventsPublishedTotal.WithLabelValues(event, status).Inc()
}
