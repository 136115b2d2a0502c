package request

import "github.com/shopspring/decimal"

// UpdateSettingsRequest represents a pharmacy settings update
type UpdateSettingsRequest struct {
	PharmacyName             string          `json:"pharmacy_name"`
	PharmacyAddress          string          `json:"pharmacy_address"`
	PharmacyPhone            string          `json:"pharmacy_phone"`
	PharmacyGSTNo            string          `json:"pharmacy_gst_no"`
	DefaultGSTPercent        decimal.Decimal `json:"default_gst_percent"`
	GlobalDiscountPercent    decimal.Decimal `json:"global_discount_percent"`
	ThresholdAmount          decimal.Decimal `json:"threshold_amount"`
	ThresholdDiscountPercent decimal.Decimal `json:"threshold_discount_percent"`
}
