package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes
const (
	OutcomeBooked             = "booked"
	OutcomeSlotUnavailable    = "slot_unavailable"
	OutcomeDoctorUnavailable  = "doctor_unavailable"
	OutcomeMissingDescription = "missing_description"
	OutcomeUpstreamFailure    = "upstream_failure"
	OutcomeError              = "error"
)

// Collector owns its registry so several collectors can coexist in one process.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	BookingsTotal      *prometheus.CounterVec
	CancellationsTotal prometheus.Counter
	CompletionsTotal   prometheus.Counter
	RatingsTotal       prometheus.Counter
	PaymentsTotal      prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"outcome"}),

		CancellationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Appointments cancelled.",
		}),

		CompletionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "completions_total",
			Help:      "Appointments marked completed.",
		}),

		RatingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "ratings_total",
			Help:      "Ratings submitted.",
		}),

		PaymentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "payments_total",
			Help:      "Payments captured.",
		}),
	}
}

func (c *Collector) Booking(outcome string) {
	if c == nil {
		return
	}
	c.BookingsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) Cancellation() {
	if c == nil {
		return
	}
	c.CancellationsTotal.Inc()
}

func (c *Collector) Completion() {
	if c == nil {
		return
	}
	c.CompletionsTotal.Inc()
}

func (c *Collector) Rating() {
	if c == nil {
		return
	}
	c.RatingsTotal.Inc()
}

func (c *Collector) Payment() {
	if c == nil {
		return
	}
	c.PaymentsTotal.Inc()
}

func (c *Collector) Request(method, route, status string) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
