package cronjobs

import (
	"SalvadoDental/metrics"
	"SalvadoDental/repositories"
	"SalvadoDental/services"
	"SalvadoDental/utils"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

const reminderLockKey = "reminder_job_lock"

// AppointmentReminder mails patients ahead of their accepted appointments.
type AppointmentReminder struct {
	appointments repositories.AppointmentRepository
	mailer       utils.Mailer
	locker       services.Locker
	recorder     metrics.Recorder
	location     *time.Location
	leadTime     time.Duration
	lockTTL      time.Duration
	now          func() time.Time
}

// NewAppointmentReminder creates a reminder that covers appointments starting
// within leadTime. The locker keeps concurrent instances from mailing twice.
func NewAppointmentReminder(
	appointments repositories.AppointmentRepository,
	mailer utils.Mailer,
	locker services.Locker,
	recorder metrics.Recorder,
	location *time.Location,
	leadTime time.Duration,
) *AppointmentReminder {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if location == nil {
		location = time.UTC
	}
	return &AppointmentReminder{
		appointments: appointments,
		mailer:       mailer,
		locker:       locker,
		recorder:     recorder,
		location:     location,
		leadTime:     leadTime,
		lockTTL:      time.Minute,
		now:          time.Now,
	}
}

// StartReminderCron runs SendAppointmentReminders every interval until the scheduler is stopped.
func (ar *AppointmentReminder) StartReminderCron(interval time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(ar.location)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		log.Println("Running appointment reminder check...")
		ctx, cancel := context.WithTimeout(context.Background(), ar.lockTTL)
		defer cancel()
		sent, err := ar.SendAppointmentReminders(ctx)
		if err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
			return
		}
		if sent > 0 {
			log.Printf("Sent %d appointment reminders", sent)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	scheduler.StartAsync()
	log.Printf("Appointment reminder cron job started, every %s", interval)
	return scheduler, nil
}

// SendAppointmentReminders mails every accepted appointment due within the
// lead time that has not been reminded yet. It returns the number sent.
func (ar *AppointmentReminder) SendAppointmentReminders(ctx context.Context) (int, error) {
	if ar.locker != nil {
		owner := uuid.NewString()
		acquired, err := ar.locker.Acquire(ctx, reminderLockKey, owner, ar.lockTTL)
		if err != nil {
			return 0, fmt.Errorf("failed to acquire reminder lock: %w", err)
		}
		if !acquired {
			return 0, nil
		}
		defer func() {
			if err := ar.locker.Release(context.Background(), reminderLockKey, owner); err != nil {
				log.Printf("Failed to release reminder lock: %v", err)
			}
		}()
	}

	now := ar.now()
	due, err := ar.appointments.ListDueForReminder(ctx, now, now.Add(ar.leadTime))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appointment := range due {
		if appointment.Patient == nil || appointment.ScheduledAt == nil {
			log.Printf("Skipping reminder for appointment %s: missing patient or time", appointment.ID)
			continue
		}

		patient := appointment.Patient
		at := appointment.ScheduledAt.In(ar.location)
		if err := utils.SendReminderEmail(ar.mailer, patient.Email, patient.FullName(), appointment.Title, at); err != nil {
			log.Printf("Failed to send reminder for appointment %s: %v", appointment.ID, err)
			continue
		}

		if err := ar.appointments.MarkReminderSent(ctx, appointment.ID, now); err != nil {
			log.Printf("Failed to mark reminder sent for appointment %s: %v", appointment.ID, err)
			continue
		}
		ar.recorder.RecordReminderSent()
		sent++
	}
	return sent, nil
}
