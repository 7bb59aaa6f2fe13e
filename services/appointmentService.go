package services

import (
	"SalvadoDental/metrics"
	"SalvadoDental/models"
	"SalvadoDental/repositories"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// EventPublisher receives every committed change for live subscribers.
type EventPublisher interface {
	Publish(event models.ChangeEvent)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ProfileID string
	Role      string
}

func (a Actor) IsDoctor() bool {
	return a.Role == models.RoleDoctor
}

// scheduledAtLayouts are the accepted formats for a scheduled time. The
// zone-less layouts are read in the clinic's time zone.
var scheduledAtLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// CreateAppointmentInput is a patient's booking request.
type CreateAppointmentInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Allergies     string `json:"allergies"`
	PaymentMethod string `json:"payment_method"`
}

func (in CreateAppointmentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.In(stringsToInterfaces(models.TreatmentCatalog)...).Error("must be a treatment from the catalog")),
		validation.Field(&in.PaymentMethod, validation.Required, validation.In(paymentMethodValues()...).Error("must be Efectivo, Banco or Occidente")),
		validation.Field(&in.Description, validation.Length(0, 2000)),
		validation.Field(&in.Allergies, validation.Length(0, 500)),
	)
}

type AppointmentService struct {
	appointments repositories.AppointmentRepository
	profiles     repositories.ProfileRepository
	schedules    repositories.ScheduleRepository
	recorder     metrics.Recorder
	publisher    EventPublisher
	location     *time.Location
	now          func() time.Time
}

func NewAppointmentService(
	appointments repositories.AppointmentRepository,
	profiles repositories.ProfileRepository,
	schedules repositories.ScheduleRepository,
	recorder metrics.Recorder,
	publisher EventPublisher,
	location *time.Location,
) *AppointmentService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if location == nil {
		location = time.UTC
	}
	return &AppointmentService{
		appointments: appointments,
		profiles:     profiles,
		schedules:    schedules,
		recorder:     recorder,
		publisher:    publisher,
		location:     location,
		now:          time.Now,
	}
}

// Create books a new pending appointment for patientID.
func (s *AppointmentService) Create(ctx context.Context, patientID string, input CreateAppointmentInput) (*models.Appointment, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	if err := input.Validate(); err != nil {
		return nil, s.fail("create", newValidationError(err))
	}
	if patientID == "" {
		return nil, s.fail("create", &ValidationError{Field: "patient_id", Message: "patient_id: cannot be blank."})
	}

	patient, err := s.profiles.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			err = fmt.Errorf("patient %s does not have a profile", patientID)
		}
		return nil, s.fail("create", &PersistenceError{Op: "create appointment", Err: err})
	}

	description := strings.TrimSpace(input.Description)
	reason := description
	if description == "" {
		description = models.DefaultDescription
		reason = models.DefaultReason
	}
	allergies := strings.TrimSpace(input.Allergies)
	if allergies == "" {
		allergies = models.DefaultAllergies
	}

	appointment := &models.Appointment{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		Title:         input.Title,
		Description:   description,
		Reason:        reason,
		Allergies:     allergies,
		PaymentMethod: models.PaymentMethod(input.PaymentMethod),
		Status:        models.StatusPending,
		ScheduledAt:   nil,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, s.fail("create", &PersistenceError{Op: "create appointment", Err: err})
	}
	appointment.Patient = patient

	s.recorder.RecordAppointmentCreated(appointment.Title)
	s.publish(models.EventAppointmentCreated, appointment)
	return appointment, nil
}

// Accept confirms a pending appointment for the given time. Status and
// scheduled time are written in one conditional update.
func (s *AppointmentService) Accept(ctx context.Context, id, scheduledAt string) (*models.Appointment, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, s.fail("accept", err)
	}
	if current.Status != models.StatusPending {
		return nil, s.fail("accept", &InvalidStateError{AppointmentID: id, From: current.Status, To: models.StatusAccepted})
	}

	at, err := s.parseScheduledAt(scheduledAt)
	if err != nil {
		return nil, s.fail("accept", err)
	}

	if at.Before(s.now().Truncate(time.Minute)) {
		return nil, s.fail("accept", &ValidationError{Field: "scheduled_at", Message: "scheduled_at: must not be in the past."})
	}
	if err := s.checkClinicHours(ctx, at); err != nil {
		return nil, s.fail("accept", err)
	}

	taken, err := s.appointments.ExistsAcceptedAt(ctx, at, id)
	if err != nil {
		return nil, s.fail("accept", &PersistenceError{Op: "check booked slot", Err: err})
	}
	if taken {
		return nil, s.fail("accept", s.slotTakenError(at))
	}

	updated, err := s.appointments.Transition(ctx, id, []models.AppointmentStatus{models.StatusPending}, models.StatusAccepted, &at)
	if errors.Is(err, repositories.ErrSlotTaken) {
		return nil, s.fail("accept", s.slotTakenError(at))
	}
	if err != nil {
		return nil, s.fail("accept", s.transitionError(ctx, err, id, models.StatusAccepted))
	}

	s.recorder.RecordTransition(string(models.StatusAccepted))
	s.publish(models.EventAppointmentAccepted, updated)
	return updated, nil
}

// Cancel moves a pending or accepted appointment to cancelled. Patients may
// only cancel their own appointments. The scheduled time is kept.
func (s *AppointmentService) Cancel(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	current, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, s.fail("cancel", err)
	}
	if current.Status == models.StatusCancelled {
		return nil, s.fail("cancel", &InvalidStateError{AppointmentID: id, From: current.Status, To: models.StatusCancelled})
	}

	updated, err := s.appointments.Transition(ctx, id,
		[]models.AppointmentStatus{models.StatusPending, models.StatusAccepted}, models.StatusCancelled, nil)
	if err != nil {
		return nil, s.fail("cancel", s.transitionError(ctx, err, id, models.StatusCancelled))
	}

	s.recorder.RecordTransition(string(models.StatusCancelled))
	s.publish(models.EventAppointmentCancelled, updated)
	return updated, nil
}

// Get returns one appointment. Patients only see their own.
func (s *AppointmentService) Get(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor() && appointment.PatientID != actor.ProfileID {
		return nil, &NotFoundError{Resource: "appointment", ID: id}
	}
	return appointment, nil
}

// List returns a snapshot ordered by creation time, newest first.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list", &PersistenceError{Op: "list appointments", Err: err})
	}
	if filter.PatientID == "" {
		return appointments, nil
	}

	own := appointments[:0:0]
	for _, a := range appointments {
		if a.PatientID == filter.PatientID {
			own = append(own, a)
		}
	}
	return own, nil
}

// ListFor applies the listing visible to actor: everything for doctors, their own for patients.
func (s *AppointmentService) ListFor(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	if actor.IsDoctor() {
		return s.List(ctx, models.AppointmentFilter{})
	}
	return s.List(ctx, models.AppointmentFilter{PatientID: actor.ProfileID})
}

// CountdownTarget returns the scheduled time of an accepted appointment visible to actor.
func (s *AppointmentService) CountdownTarget(ctx context.Context, id string, actor Actor) (time.Time, error) {
	appointment, err := s.Get(ctx, id, actor)
	if err != nil {
		return time.Time{}, err
	}
	if appointment.Status != models.StatusAccepted || appointment.ScheduledAt == nil {
		return time.Time{}, &ValidationError{Field: "status", Message: fmt.Sprintf("appointment %s is %s and has no confirmed time.", id, appointment.Status)}
	}
	return *appointment.ScheduledAt, nil
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "appointment_id", Message: "appointment_id: cannot be blank."}
	}
	appointment, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &NotFoundError{Resource: "appointment", ID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get appointment", Err: err}
	}
	return appointment, nil
}

func (s *AppointmentService) parseScheduledAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ValidationError{Field: "scheduled_at", Message: "scheduled_at: cannot be blank."}
	}
	if at, err := time.Parse(time.RFC3339, value); err == nil {
		return at.UTC(), nil
	}
	for _, layout := range scheduledAtLayouts {
		if at, err := time.ParseInLocation(layout, value, s.location); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "scheduled_at", Message: fmt.Sprintf("scheduled_at: %q is not a valid date and time.", value)}
}

// checkClinicHours rejects times on closed days or outside opening hours.
// Hours of a closed day are never consulted.
func (s *AppointmentService) checkClinicHours(ctx context.Context, at time.Time) error {
	local := at.In(s.location)
	entry, err := s.schedules.GetByID(ctx, models.WeekdayID(local.Weekday()))
	if err != nil {
		return &PersistenceError{Op: "get schedule entry", Err: err}
	}
	if entry.IsClosed {
		return &ValidationError{Field: "scheduled_at", Message: fmt.Sprintf("scheduled_at: the clinic is closed on %s.", entry.Day)}
	}
	if !entry.Accepts(local) {
		return &ValidationError{Field: "scheduled_at", Message: fmt.Sprintf("scheduled_at: %s is outside opening hours %s-%s on %s.",
			local.Format(models.ClockLayout), entry.Open, entry.Close, entry.Day)}
	}
	return nil
}

// transitionError maps a failed conditional write onto the service error kinds.
func (s *AppointmentService) slotTakenError(at time.Time) error {
	return &ValidationError{Field: "scheduled_at", Message: fmt.Sprintf("scheduled_at: %s is already booked.", at.In(s.location).Format("2006-01-02 15:04"))}
}

func (s *AppointmentService) transitionError(ctx context.Context, err error, id string, to models.AppointmentStatus) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &NotFoundError{Resource: "appointment", ID: id}
	case errors.Is(err, repositories.ErrStaleStatus):
		from := models.AppointmentStatus("unknown")
		if current, getErr := s.appointments.GetByID(ctx, id); getErr == nil {
			from = current.Status
		}
		return &InvalidStateError{AppointmentID: id, From: from, To: to}
	default:
		return &PersistenceError{Op: "update appointment status", Err: err}
	}
}

func (s *AppointmentService) fail(operation string, err error) error {
	kind := ErrorKind(err)
	s.recorder.RecordFailure(operation, kind)
	if kind == "persistence" {
		log.Printf("Appointment %s failed: %v", operation, err)
	}
	return err
}

func (s *AppointmentService) publish(eventType string, appointment *models.Appointment) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(models.ChangeEvent{Type: eventType, Appointment: appointment, At: s.now().UTC()})
}

func stringsToInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func paymentMethodValues() []interface{} {
	out := make([]interface{}, len(models.PaymentMethods))
	for i, m := range models.PaymentMethods {
		out[i] = string(m)
	}
	return out
}
