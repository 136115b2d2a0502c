package memory

import (
	"context"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
)

type settingsRepository struct {
	s *Store
}

// NewSettingsRepository returns a settings store backed by s.
func NewSettingsRepository(s *Store) domainRepo.SettingsRepository {
	return &settingsRepository{s: s}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.PharmacySettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.settings == nil {
		return nil, nil
	}
	cp := *r.s.settings
	return &cp, nil
}

func (r *settingsRepository) Create(ctx context.Context, settings *entity.PharmacySettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.settings != nil {
		return domainRepo.ErrSettingsExist
	}
	now := time.Now()
	settings.ID = entity.PharmacySettingsID
	settings.CreatedAt = now
	settings.UpdatedAt = now
	cp := *settings
	r.s.settings = &cp
	return nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *entity.PharmacySettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	settings.ID = entity.PharmacySettingsID
	settings.UpdatedAt = time.Now()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = settings.UpdatedAt
	}
	cp := *settings
	r.s.settings = &cp
	return nil
}
