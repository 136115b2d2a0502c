package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a medicine stock record in the catalog. Each record tracks a
// single batch, so the same medicine may appear once per batch.
type Product struct {
	ID            uuid.UUID       `gorm:"size:36;primaryKey" json:"id"`
	Name          string          `gorm:"size:255;not null;index" json:"name"`
	BrandName     string          `gorm:"size:255;index" json:"brand_name"`
	Category      string          `gorm:"size:100;index" json:"category"`
	BatchNumber   string          `gorm:"size:100;not null" json:"batch_number"`
	ExpiryDate    time.Time       `gorm:"not null;index" json:"expiry_date"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"selling_price"`
	StockQuantity int             `gorm:"not null;default:0;index" json:"stock_quantity"`
	SupplierName  string          `gorm:"size:255" json:"supplier_name"`
	// TaxPercentage is nil when the product has no explicit GST rate and
	// the pharmacy default applies. Zero is a real rate (exempt goods).
	TaxPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_percentage"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock is strictly below threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQuantity < threshold
}

// IsExpired reports whether the product expired before now.
func (p *Product) IsExpired(now time.Time) bool {
	return p.ExpiryDate.Before(now)
}

// IsExpiringWithin reports now < expiry <= now+window.
func (p *Product) IsExpiringWithin(now time.Time, window time.Duration) bool {
	return p.ExpiryDate.After(now) && !p.ExpiryDate.After(now.Add(window))
}
