package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PharmacySettingsID is the primary key of the single settings row.
const PharmacySettingsID uint = 1

// PharmacySettings is the pharmacy-wide billing policy and identity. Exactly
// one row exists; it is created with zero values on first read.
type PharmacySettings struct {
	ID                       uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	PharmacyName             string          `gorm:"size:255" json:"pharmacy_name"`
	PharmacyAddress          string          `gorm:"type:text" json:"pharmacy_address"`
	PharmacyPhone            string          `gorm:"size:32" json:"pharmacy_phone"`
	PharmacyGSTNo            string          `gorm:"column:pharmacy_gst_no;size:20" json:"pharmacy_gst_no"`
	DefaultGSTPercent        decimal.Decimal `gorm:"column:default_gst_percent;type:decimal(5,2);not null;default:0" json:"default_gst_percent"`
	GlobalDiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"global_discount_percent"`
	ThresholdAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"threshold_amount"`
	ThresholdDiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"threshold_discount_percent"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// TableName returns the table name for the PharmacySettings model
func (PharmacySettings) TableName() string {
	return "pharmacy_settings"
}

// DefaultPharmacySettings returns the row materialised when none exists.
func DefaultPharmacySettings() *PharmacySettings {
	return &PharmacySettings{
		ID:                       PharmacySettingsID,
		DefaultGSTPercent:        decimal.Zero,
		GlobalDiscountPercent:    decimal.Zero,
		ThresholdAmount:          decimal.Zero,
		ThresholdDiscountPercent: decimal.Zero,
	}
}

// TaxApplicable reports whether GST is charged on sales: the pharmacy is
// registered, or a positive default rate is configured.
func (s *PharmacySettings) TaxApplicable() bool {
	return s.PharmacyGSTNo != "" || s.DefaultGSTPercent.IsPositive()
}
