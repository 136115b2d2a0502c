package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is an immutable invoice in the ledger. Lines are snapshots taken at
// billing time and never join back to the live catalog.
type Sale struct {
	ID               uuid.UUID          `gorm:"size:36;primaryKey" json:"id"`
	InvoiceNumber    string             `gorm:"size:64;uniqueIndex;not null" json:"invoice_number"`
	CustomerName     string             `gorm:"size:255;index" json:"customer_name,omitempty"`
	CustomerContact  string             `gorm:"size:32;index" json:"customer_contact,omitempty"`
	Items            []SaleItem         `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	SubTotal         decimal.Decimal    `gorm:"type:decimal(14,4);not null" json:"sub_total"`
	Discount         decimal.Decimal    `gorm:"type:decimal(14,4);not null;default:0" json:"discount"`
	TotalTax         decimal.Decimal    `gorm:"type:decimal(14,4);not null;default:0" json:"total_tax"`
	CGSTAmount       decimal.Decimal    `gorm:"column:cgst_amount;type:decimal(14,4);not null;default:0" json:"cgst_amount"`
	SGSTAmount       decimal.Decimal    `gorm:"column:sgst_amount;type:decimal(14,4);not null;default:0" json:"sgst_amount"`
	IGSTAmount       decimal.Decimal    `gorm:"column:igst_amount;type:decimal(14,4);not null;default:0" json:"igst_amount"`
	TotalAmount      decimal.Decimal    `gorm:"type:decimal(14,4);not null" json:"total_amount"`
	TotalProfit      decimal.Decimal    `gorm:"type:decimal(14,4);not null" json:"total_profit"`
	PaymentMethod    enum.PaymentMethod `gorm:"size:10;not null;default:'Cash'" json:"payment_method"`
	GatewayOrderID   string             `gorm:"size:100" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string             `gorm:"size:100" json:"gateway_payment_id,omitempty"`
	PharmacyGSTNo    string             `gorm:"column:pharmacy_gst_no;size:20" json:"pharmacy_gst_no,omitempty"`
	CreatedBy        string             `gorm:"size:64" json:"created_by,omitempty"`
	CreatedAt        time.Time          `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is a point-in-time copy of a product line on an invoice.
// ProductID is kept for traceability only; there is no foreign key.
type SaleItem struct {
	ID            uuid.UUID       `gorm:"size:36;primaryKey" json:"-"`
	SaleID        uuid.UUID       `gorm:"size:36;not null;index" json:"-"`
	Position      int             `gorm:"not null" json:"-"`
	ProductID     uuid.UUID       `gorm:"size:36;index" json:"product_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	BrandName     string          `gorm:"size:255" json:"brand_name,omitempty"`
	Category      string          `gorm:"size:100" json:"category,omitempty"`
	BatchNumber   string          `gorm:"size:100" json:"batch_number"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"line_total"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_percent"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"tax_amount"`
	LineProfit    decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"-"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
