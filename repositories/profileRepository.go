package repositories

import (
	"SalvadoDental/models"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.Email = normalizeEmail(profile.Email)
	err := r.db.WithContext(ctx).Create(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *profileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", normalizeEmail(email)).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *profileRepository) MarkEmailConfirmed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("email_confirmed", true)
	if result.Error != nil {
		return fmt.Errorf("failed to confirm email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) first(ctx context.Context, query string, arg interface{}) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where(query, arg).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("malformed profile record: %w", err)
	}
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
