// Package metrics exposes Prometheus counters for booking activity.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report booking activity to.
type Recorder interface {
	RecordAppointmentCreated(title string)
	RecordTransition(status string)
	RecordFailure(operation, kind string)
	RecordScheduleUpdate(weekdayID int)
	RecordReminderSent()
}

// Collector records booking activity into Prometheus metrics.
type Collector struct {
	created         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	scheduleUpdates *prometheus.CounterVec
	remindersSent   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvado_appointments_created_total",
			Help: "Appointments requested, by treatment.",
		}, []string{"title"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvado_appointment_transitions_total",
			Help: "Appointment status transitions, by target status.",
		}, []string{"status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvado_operation_failures_total",
			Help: "Failed booking operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		scheduleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salvado_schedule_updates_total",
			Help: "Clinic schedule edits, by weekday.",
		}, []string{"weekday"}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salvado_reminders_sent_total",
			Help: "Appointment reminder emails sent.",
		}),
	}

	reg.MustRegister(
		c.created,
		c.transitions,
		c.failures,
		c.scheduleUpdates,
		c.remindersSent,
	)

	return c
}

func (c *Collector) RecordAppointmentCreated(title string) {
	c.created.WithLabelValues(title).Inc()
}

func (c *Collector) RecordTransition(status string) {
	c.transitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordFailure(operation, kind string) {
	c.failures.WithLabelValues(operation, kind).Inc()
}

func (c *Collector) RecordScheduleUpdate(weekdayID int) {
	c.scheduleUpdates.WithLabelValues(strconv.Itoa(weekdayID)).Inc()
}

func (c *Collector) RecordReminderSent() {
	c.remindersSent.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything. It stands in when no registry is wired.
type Nop struct{}

func (Nop) RecordAppointmentCreated(string) {}
func (Nop) RecordTransition(string)         {}
func (Nop) RecordFailure(string, string)    {}
func (Nop) RecordScheduleUpdate(int)        {}
func (Nop) RecordReminderSent()             {}
