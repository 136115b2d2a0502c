package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SettingsProvider gives read access to the pharmacy settings.
type SettingsProvider interface {
	GetSettings(ctx context.Context) (*entity.PharmacySettings, error)
}

// SettingsService owns the singleton pharmacy settings row
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	validate     *validator.Validate
	log          *logrus.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, log *logrus.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		validate:     newValidator(),
		log:          log,
	}
}

// GetSettings returns the settings, creating the default row on first use.
// Two callers racing to create it both end up reading the same row.
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.PharmacySettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, s.internal("GetSettings", "load settings", err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = entity.DefaultPharmacySettings()
	err = s.settingsRepo.Create(ctx, settings)
	if errors.Is(err, repository.ErrSettingsExist) {
		settings, err = s.settingsRepo.Get(ctx)
		if err == nil && settings == nil {
			err = errors.New("settings row vanished after duplicate create")
		}
	}
	if err != nil {
		return nil, s.internal("GetSettings", "create default settings", err)
	}

	s.log.Info("default pharmacy settings created")
	return settings, nil
}

// UpdateSettingsInput represents the input for updating settings
type UpdateSettingsInput struct {
	PharmacyName             string          `json:"pharmacy_name" validate:"max=255"`
	PharmacyAddress          string          `json:"pharmacy_address" validate:"max=1000"`
	PharmacyPhone            string          `json:"pharmacy_phone" validate:"max=32"`
	PharmacyGSTNo            string          `json:"pharmacy_gst_no" validate:"omitempty,len=15,alphanum"`
	DefaultGSTPercent        decimal.Decimal `json:"default_gst_percent"`
	GlobalDiscountPercent    decimal.Decimal `json:"global_discount_percent"`
	ThresholdAmount          decimal.Decimal `json:"threshold_amount"`
	ThresholdDiscountPercent decimal.Decimal `json:"threshold_discount_percent"`
}

// UpdateSettings replaces the settings row
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.PharmacySettings, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	var fieldErrors []apperror.FieldError
	percentages := []struct {
		field string
		value decimal.Decimal
	}{
		{"default_gst_percent", input.DefaultGSTPercent},
		{"global_discount_percent", input.GlobalDiscountPercent},
		{"threshold_discount_percent", input.ThresholdDiscountPercent},
	}
	for _, pct := range percentages {
		if pct.value.IsNegative() || pct.value.GreaterThan(hundred) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: pct.field, Message: "must be between 0 and 100"})
		}
	}
	if input.ThresholdAmount.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "threshold_amount", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	settings.PharmacyName = input.PharmacyName
	settings.PharmacyAddress = input.PharmacyAddress
	settings.PharmacyPhone = input.PharmacyPhone
	settings.PharmacyGSTNo = input.PharmacyGSTNo
	settings.DefaultGSTPercent = input.DefaultGSTPercent.Round(2)
	settings.GlobalDiscountPercent = input.GlobalDiscountPercent.Round(2)
	settings.ThresholdAmount = input.ThresholdAmount.Round(2)
	settings.ThresholdDiscountPercent = input.ThresholdDiscountPercent.Round(2)

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, s.internal("UpdateSettings", "save settings", err)
	}
	return settings, nil
}

func (s *SettingsService) internal(funcName, context string, err error) error {
	logger.LogError(s.log, "SettingsService", funcName, context, nil, err)
	return apperror.ErrInternalServer
}
