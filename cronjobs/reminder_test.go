package cronjobs

import (
	"SalvadoDental/database"
	"SalvadoDental/models"
	"SalvadoDental/repositories"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	to   []string
	fail bool
}

func (m *recordingMailer) Send(to, subject, plain, html string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.to = append(m.to, to)
	return nil
}

type countingRecorder struct {
	reminders int
}

func (r *countingRecorder) RecordAppointmentCreated(string) {}
func (r *countingRecorder) RecordTransition(string)         {}
func (r *countingRecorder) RecordFailure(string, string)    {}
func (r *countingRecorder) RecordScheduleUpdate(int)        {}
func (r *countingRecorder) RecordReminderSent()             { r.reminders++ }

var now = time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *repositories.MemoryAppointmentRepository, id string, status models.AppointmentStatus, at *time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Appointment{
		ID:            id,
		PatientID:     "patient-1",
		Title:         "Consulta General",
		PaymentMethod: models.PaymentCash,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}))
	if status != models.StatusPending {
		_, err := repo.Transition(context.Background(), id, []models.AppointmentStatus{models.StatusPending}, status, at)
		require.NoError(t, err)
	}
}

func newFixture(t *testing.T) (*repositories.MemoryAppointmentRepository, *miniredis.Miniredis, *database.RedisLocker) {
	t.Helper()
	profiles := repositories.NewMemoryProfileRepository()
	require.NoError(t, profiles.Create(context.Background(), &models.Profile{
		ID:          "patient-1",
		FirstName:   "Ana",
		LastName:    "Pérez",
		Email:       "ana@example.com",
		DateOfBirth: "1990-05-10",
		Role:        models.RolePatient,
	}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return repositories.NewMemoryAppointmentRepository(profiles), mr, database.NewRedisLocker(client)
}

func TestSendAppointmentReminders(t *testing.T) {
	repo, _, locker := newFixture(t)

	soon := now.Add(3 * time.Hour)
	later := now.Add(48 * time.Hour)
	seed(t, repo, "due", models.StatusAccepted, &soon)
	seed(t, repo, "too-far", models.StatusAccepted, &later)
	seed(t, repo, "pending", models.StatusPending, nil)
	seed(t, repo, "cancelled", models.StatusCancelled, nil)

	mailer := &recordingMailer{}
	recorder := &countingRecorder{}
	reminder := NewAppointmentReminder(repo, mailer, locker, recorder, time.UTC, 24*time.Hour)
	reminder.now = func() time.Time { return now }

	sent, err := reminder.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"ana@example.com"}, mailer.to)
	assert.Equal(t, 1, recorder.reminders)

	sent, err = reminder.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, mailer.to, 1)
}

func TestSendAppointmentReminders_SkipsWhileLockHeld(t *testing.T) {
	repo, mr, locker := newFixture(t)
	soon := now.Add(time.Hour)
	seed(t, repo, "due", models.StatusAccepted, &soon)
	require.NoError(t, mr.Set(reminderLockKey, "other-instance"))

	mailer := &recordingMailer{}
	reminder := NewAppointmentReminder(repo, mailer, locker, nil, time.UTC, 24*time.Hour)
	reminder.now = func() time.Time { return now }

	sent, err := reminder.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, mailer.to)

	got, err := mr.Get(reminderLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got)
}

func TestSendAppointmentReminders_RetriesAfterMailFailure(t *testing.T) {
	repo, _, locker := newFixture(t)
	soon := now.Add(time.Hour)
	seed(t, repo, "due", models.StatusAccepted, &soon)

	mailer := &recordingMailer{fail: true}
	reminder := NewAppointmentReminder(repo, mailer, locker, nil, time.UTC, 24*time.Hour)
	reminder.now = func() time.Time { return now }

	sent, err := reminder.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	mailer.fail = false
	sent, err = reminder.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestStartReminderCron(t *testing.T) {
	repo, _, locker := newFixture(t)
	reminder := NewAppointmentReminder(repo, &recordingMailer{}, locker, nil, time.UTC, time.Hour)

	scheduler, err := reminder.StartReminderCron(time.Hour)
	require.NoError(t, err)
	defer scheduler.Stop()

	assert.True(t, scheduler.IsRunning())
	assert.Len(t, scheduler.Jobs(), 1)
}
