package repositories

import (
	"SalvadoDental/models"
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus is returned by a conditional status write whose expected
	// status no longer matches the stored one.
	ErrStaleStatus = errors.New("appointment status changed concurrently")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrSlotTaken is returned when another accepted appointment already holds the scheduled time.
	ErrSlotTaken = errors.New("scheduled time already booked")
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	// Transition moves the appointment to status `to` only while its current
	// status is one of `from`. scheduledAt, when non-nil, is written in the same update.
	// Accepting into a time another accepted appointment holds fails with ErrSlotTaken.
	Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, scheduledAt *time.Time) (*models.Appointment, error)
	ExistsAcceptedAt(ctx context.Context, scheduledAt time.Time, excludeID string) (bool, error)
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MarkEmailConfirmed(ctx context.Context, id string) error
}

type ScheduleRepository interface {
	List(ctx context.Context) ([]models.ClinicScheduleEntry, error)
	GetByID(ctx context.Context, id int) (*models.ClinicScheduleEntry, error)
	// Update replaces the hours of an existing weekday entry. It never inserts.
	Update(ctx context.Context, entry *models.ClinicScheduleEntry) error
}
