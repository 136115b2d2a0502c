package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) domainRepo.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.PharmacySettings, error) {
	var settings entity.PharmacySettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", entity.PharmacySettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Create(ctx context.Context, settings *entity.PharmacySettings) error {
	settings.ID = entity.PharmacySettingsID
	err := r.db.WithContext(ctx).Create(settings).Error
	if err != nil && isUniqueViolation(err) {
		return domainRepo.ErrSettingsExist
	}
	return err
}

func (r *settingsRepository) Update(ctx context.Context, settings *entity.PharmacySettings) error {
	settings.ID = entity.PharmacySettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
