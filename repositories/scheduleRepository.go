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
	ScheduleCacheExpiry = 24 * time.Hour
	scheduleCacheKey    = "clinic_schedule_cache"
)

type scheduleRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewScheduleRepository(db *gorm.DB, cache *cache.Cache) ScheduleRepository {
	return &scheduleRepository{db: db, cache: cache}
}

func (r *scheduleRepository) List(ctx context.Context) ([]models.ClinicScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cached []models.ClinicScheduleEntry
	hit, err := r.cache.GetJSON(ctx, scheduleCacheKey, &cached)
	if err != nil {
		log.Printf("Failed to get schedule from cache: %v", err)
	} else if hit {
		return cached, nil
	}

	var entries []models.ClinicScheduleEntry
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list clinic schedule: %w", err)
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("malformed schedule record: %w", err)
		}
	}

	if err := r.cache.SetJSON(ctx, scheduleCacheKey, entries, ScheduleCacheExpiry); err != nil {
		log.Printf("Failed to set schedule in cache: %v", err)
	}
	return entries, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int) (*models.ClinicScheduleEntry, error) {
	var entry models.ClinicScheduleEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule entry: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("malformed schedule record: %w", err)
	}
	return &entry, nil
}

func (r *scheduleRepository) Update(ctx context.Context, entry *models.ClinicScheduleEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.ClinicScheduleEntry{}).
		Where("id = ?", entry.ID).
		Select("open", "close", "is_closed").
		Updates(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to update schedule entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	if err := r.cache.Delete(ctx, scheduleCacheKey); err != nil {
		log.Printf("Failed to delete schedule cache: %v", err)
	}
	return nil
}
