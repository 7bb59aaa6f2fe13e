package repositories

import (
	"SalvadoDental/models"
	"context"
	"sort"
	"sync"
	"time"
)

// The in-memory repositories keep everything in process. They back the
// service and HTTP tests.

type MemoryAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[string]models.Appointment
	profiles     *MemoryProfileRepository
}

// NewMemoryAppointmentRepository creates an empty store. When profiles is not
// nil, created appointments must reference an existing profile.
func NewMemoryAppointmentRepository(profiles *MemoryProfileRepository) *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{
		appointments: make(map[string]models.Appointment),
		profiles:     profiles,
	}
}

func (r *MemoryAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if r.profiles != nil {
		if _, err := r.profiles.GetByID(ctx, appointment.PatientID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[appointment.ID]; ok {
		return ErrDuplicate
	}
	stored := *appointment
	stored.Patient = nil
	r.appointments[appointment.ID] = stored
	return nil
}

func (r *MemoryAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.withPatient(ctx, a), nil
}

func (r *MemoryAppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appointments := make([]models.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		appointments = append(appointments, *r.withPatient(ctx, a))
	}
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].CreatedAt.Equal(appointments[j].CreatedAt) {
			return appointments[i].ID > appointments[j].ID
		}
		return appointments[i].CreatedAt.After(appointments[j].CreatedAt)
	})
	return appointments, nil
}

func (r *MemoryAppointmentRepository) Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, scheduledAt *time.Time) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !containsStatus(from, a.Status) {
		return nil, ErrStaleStatus
	}
	if scheduledAt != nil {
		at := scheduledAt.UTC()
		a.ScheduledAt = &at
	}
	if to == models.StatusAccepted && a.ScheduledAt != nil && r.slotTakenLocked(*a.ScheduledAt, id) {
		return nil, ErrSlotTaken
	}
	a.Status = to
	r.appointments[id] = a
	return r.withPatient(ctx, a), nil
}

func (r *MemoryAppointmentRepository) ExistsAcceptedAt(ctx context.Context, scheduledAt time.Time, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slotTakenLocked(scheduledAt, excludeID), nil
}

// slotTakenLocked reports whether an accepted appointment other than excludeID holds scheduledAt. r.mu must be held.
func (r *MemoryAppointmentRepository) slotTakenLocked(scheduledAt time.Time, excludeID string) bool {
	for id, a := range r.appointments {
		if id == excludeID || a.Status != models.StatusAccepted || a.ScheduledAt == nil {
			continue
		}
		if a.ScheduledAt.Equal(scheduledAt) {
			return true
		}
	}
	return false
}

func (r *MemoryAppointmentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []models.Appointment
	for _, a := range r.appointments {
		if a.Status != models.StatusAccepted || a.ReminderSentAt != nil || a.ScheduledAt == nil {
			continue
		}
		if a.ScheduledAt.After(from) && !a.ScheduledAt.After(to) {
			due = append(due, *r.withPatient(ctx, a))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	return due, nil
}

func (r *MemoryAppointmentRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	if a.ReminderSentAt == nil {
		sent := at.UTC()
		a.ReminderSentAt = &sent
		r.appointments[id] = a
	}
	return nil
}

func (r *MemoryAppointmentRepository) withPatient(ctx context.Context, a models.Appointment) *models.Appointment {
	if r.profiles != nil {
		if p, err := r.profiles.GetByID(ctx, a.PatientID); err == nil {
			a.Patient = p
		}
	}
	return &a
}

func containsStatus(statuses []models.AppointmentStatus, status models.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]models.Profile)}
}

func (r *MemoryProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile.Email = normalizeEmail(profile.Email)
	for _, p := range r.profiles {
		if p.ID == profile.ID || p.Email == profile.Email {
			return ErrDuplicate
		}
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = normalizeEmail(email)
	for _, p := range r.profiles {
		if p.Email == email {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryProfileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryProfileRepository) MarkEmailConfirmed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.EmailConfirmed = true
	r.profiles[id] = p
	return nil
}

type MemoryScheduleRepository struct {
	mu      sync.RWMutex
	entries map[int]models.ClinicScheduleEntry
}

// NewMemoryScheduleRepository creates a store holding the default week.
func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	r := &MemoryScheduleRepository{entries: make(map[int]models.ClinicScheduleEntry)}
	for _, e := range models.DefaultClinicSchedule() {
		r.entries[e.ID] = e
	}
	return r
}

func (r *MemoryScheduleRepository) List(ctx context.Context) ([]models.ClinicScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]models.ClinicScheduleEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r *MemoryScheduleRepository) GetByID(ctx context.Context, id int) (*models.ClinicScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *MemoryScheduleRepository) Update(ctx context.Context, entry *models.ClinicScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Open = entry.Open
	existing.Close = entry.Close
	existing.IsClosed = entry.IsClosed
	r.entries[entry.ID] = existing
	return nil
}
