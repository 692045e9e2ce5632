package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking core.
// A nil receiver is a no-op so wiring stays optional in tools.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
	cancellationsTotal *prometheus.CounterVec
	slotsGenerated     prometheus.Counter
	slotsSwept         prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "latency_seconds",
			Help:      "Latency of the booking transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Appointment cancellations by actor",
		}, []string{"cancelled_by"}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "slots",
			Name:      "generated_total",
			Help:      "Slots newly created by the generator",
		}),
		slotsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "slots",
			Name:      "swept_total",
			Help:      "Available slots cancelled by unavailability sweeps",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.bookingLatency, m.cancellationsTotal, m.slotsGenerated, m.slotsSwept)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveCancellation(cancelledBy string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(cancelledBy).Inc()
}

func (m *BookingMetrics) AddSlotsGenerated(n int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Add(float64(n))
}

func (m *BookingMetrics) AddSlotsSwept(n int64) {
	if m == nil {
		return
	}
	m.slotsSwept.Add(float64(n))
}
