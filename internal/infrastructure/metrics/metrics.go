package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for booking and the sweep.
type SchedulingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	sweepTicksTotal    *prometheus.CounterVec
	sweepActionsTotal  *prometheus.CounterVec
	sweepDuration      prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking attempts by source and outcome",
		}, []string{"source", "outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Appointment status changes",
		}, []string{"from", "to"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification emails by kind and status",
		}, []string{"kind", "status"}),
		sweepTicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "sweep",
			Name:      "ticks_total",
			Help:      "Sweep ticks by outcome",
		}, []string{"outcome"}),
		sweepActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "sweep",
			Name:      "actions_total",
			Help:      "Reminders and auto-cancellations fired by the sweep",
		}, []string{"action", "status"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "sweep",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one sweep tick",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsTotal,
		m.transitionsTotal,
		m.notificationsTotal,
		m.sweepTicksTotal,
		m.sweepActionsTotal,
		m.sweepDuration,
	)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(source, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(source, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *SchedulingMetrics) ObserveNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

// ObserveSweepTick records a finished tick; outcome is "ok", "skipped" or "error".
func (m *SchedulingMetrics) ObserveSweepTick(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.sweepTicksTotal.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		m.sweepDuration.Observe(seconds)
	}
}

func (m *SchedulingMetrics) ObserveSweepAction(action string, err error) {
	if m == nil {
		return
	}
	m.sweepActionsTotal.WithLabelValues(action, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "sent"
}
