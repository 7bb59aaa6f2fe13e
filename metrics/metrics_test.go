package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestCollector_Created(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAppointmentCreated("Consulta General")
	c.RecordAppointmentCreated("Consulta General")
	c.RecordAppointmentCreated("Blanqueamiento")

	mf := findFamily(t, reg, "salvado_appointments_created_total")
	require.Len(t, mf.GetMetric(), 2)
	for _, m := range mf.GetMetric() {
		switch m.GetLabel()[0].GetValue() {
		case "Consulta General":
			assert.Equal(t, 2.0, m.GetCounter().GetValue())
		case "Blanqueamiento":
			assert.Equal(t, 1.0, m.GetCounter().GetValue())
		default:
			t.Errorf("unexpected label %s", m.GetLabel()[0].GetValue())
		}
	}
}

func TestCollector_FailuresAndReminders(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFailure("accept", "invalid_state")
	c.RecordReminderSent()
	c.RecordReminderSent()
	c.RecordScheduleUpdate(7)
	c.RecordTransition("accepted")

	failures := findFamily(t, reg, "salvado_operation_failures_total")
	require.Len(t, failures.GetMetric(), 1)
	assert.Equal(t, 1.0, failures.GetMetric()[0].GetCounter().GetValue())

	reminders := findFamily(t, reg, "salvado_reminders_sent_total")
	assert.Equal(t, 2.0, reminders.GetMetric()[0].GetCounter().GetValue())

	schedule := findFamily(t, reg, "salvado_schedule_updates_total")
	assert.Equal(t, "7", schedule.GetMetric()[0].GetLabel()[0].GetValue())
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordTransition("cancelled")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `salvado_appointment_transitions_total{status="cancelled"} 1`))
}
