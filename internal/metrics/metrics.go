package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	BookingsCreated     *prometheus.CounterVec
	BookingDecisions    *prometheus.CounterVec
}

// NewMetrics registers and returns the service metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "share_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		BookingsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "share_bookings_created_total",
			Help: "Total number of bookings created",
		}, []string{"item_name"}),

		BookingDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "share_booking_decisions_total",
			Help: "Total number of approve/reject decisions by resulting status",
		}, []string{"status"}),
	}
}
