package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
)

// ErrSettingsExist is returned by Create when the settings row already exists.
var ErrSettingsExist = errors.New("pharmacy settings already exist")

// SettingsRepository stores the singleton pharmacy settings row
type SettingsRepository interface {
	// Get returns nil, nil when the row has not been created yet.
	Get(ctx context.Context) (*entity.PharmacySettings, error)
	Create(ctx context.Context, settings *entity.PharmacySettings) error
	Update(ctx context.Context, settings *entity.PharmacySettings) error
}
