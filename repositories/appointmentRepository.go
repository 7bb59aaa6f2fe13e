package repositories

import (
	"SalvadoDental/cache"
	"SalvadoDental/models"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	AppointmentCacheExpiry = 10 * time.Minute
	appointmentsCacheAll   = "appointments_cache:all"
)

type appointmentRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewAppointmentRepository(db *gorm.DB, cache *cache.Cache) AppointmentRepository {
	return &appointmentRepository{db: db, cache: cache}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if err := r.db.WithContext(ctx).Omit("Patient").Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	r.invalidate(ctx, appointment.ID)
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getAppointmentCacheKey(id)
	var cached models.Appointment
	if r.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if err := appointment.Validate(); err != nil {
		return nil, fmt.Errorf("malformed appointment record: %w", err)
	}

	r.writeCache(ctx, cacheKey, appointment)
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getListCacheKey(filter)
	var cached []models.Appointment
	if r.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Appointment{}).Preload("Patient")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}

	var appointments []models.Appointment
	if err := query.Order("created_at DESC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	for _, a := range appointments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("malformed appointment record: %w", err)
		}
	}

	r.writeCache(ctx, cacheKey, appointments)
	return appointments, nil
}

func (r *appointmentRepository) Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, scheduledAt *time.Time) (*models.Appointment, error) {
	updates := map[string]interface{}{"status": to}
	if scheduledAt != nil {
		updates["scheduled_at"] = scheduledAt.UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return nil, ErrSlotTaken
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", result.Error)
	}
	r.invalidate(ctx, id)

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check appointment existence: %w", err)
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrStaleStatus
	}

	return r.GetByID(ctx, id)
}

func (r *appointmentRepository) ExistsAcceptedAt(ctx context.Context, scheduledAt time.Time, excludeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("status = ? AND scheduled_at = ? AND id <> ?", models.StatusAccepted, scheduledAt.UTC(), excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booked slot: %w", err)
	}
	return count > 0, nil
}

func (r *appointmentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("status = ? AND reminder_sent_at IS NULL AND scheduled_at > ? AND scheduled_at <= ?",
			models.StatusAccepted, from.UTC(), to.UTC()).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments due for reminder: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (r *appointmentRepository) readCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := r.cache.GetJSON(ctx, key, dest)
	if err != nil {
		log.Printf("Failed to get %s from cache: %v", key, err)
		return false
	}
	return hit
}

func (r *appointmentRepository) writeCache(ctx context.Context, key string, value interface{}) {
	if err := r.cache.SetJSON(ctx, key, value, AppointmentCacheExpiry); err != nil {
		log.Printf("Failed to set %s in cache: %v", key, err)
	}
}

// invalidate drops the single-appointment entry and every cached listing.
func (r *appointmentRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, r.getAppointmentCacheKey(id)); err != nil {
		log.Printf("Failed to delete appointment cache: %v", err)
	}
	if err := r.cache.DeleteAll(ctx, "appointments_cache:*"); err != nil {
		log.Printf("Failed to delete appointment list caches: %v", err)
	}
}

func (r *appointmentRepository) getAppointmentCacheKey(id string) string {
	return fmt.Sprintf("appointment_cache:%s", id)
}

func (r *appointmentRepository) getListCacheKey(filter models.AppointmentFilter) string {
	if filter.PatientID == "" {
		return appointmentsCacheAll
	}
	return fmt.Sprintf("appointments_cache:patient:%s", filter.PatientID)
}
