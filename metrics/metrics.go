package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dynamictickets"

type BookingMetrics struct {
	created     prometheus.Counter
	rejected    *prometheus.CounterVec
	duration    prometheus.Histogram
	ticketsSold prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	factory := promauto.With(reg)

	return &BookingMetrics{
		created: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings committed.",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts that did not commit, by reason.",
		}, []string{"reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_duration_seconds",
			Help:      "Time spent creating a booking, lock waits and retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		ticketsSold: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_sold_total",
			Help:      "Tickets sold across all events.",
		}),
	}
}

func (m *BookingMetrics) BookingCreated(quantity int) {
	m.created.Inc()
	m.ticketsSold.Add(float64(quantity))
}

func (m *BookingMetrics) BookingRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}
