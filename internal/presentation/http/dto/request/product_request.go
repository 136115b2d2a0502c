package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=2,max=255"`
	BrandName     string           `json:"brand_name" binding:"max=255"`
	Category      string           `json:"category" binding:"max=100"`
	BatchNumber   string           `json:"batch_number" binding:"required,max=100"`
	ExpiryDate    string           `json:"expiry_date" binding:"required,datetime=2006-01-02"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	StockQuantity int              `json:"stock_quantity" binding:"min=0"`
	SupplierName  string           `json:"supplier_name" binding:"max=255"`
	TaxPercentage *decimal.Decimal `json:"tax_percentage"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=255"`
	BrandName     *string          `json:"brand_name" binding:"omitempty,max=255"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	BatchNumber   *string          `json:"batch_number" binding:"omitempty,min=1,max=100"`
	ExpiryDate    *string          `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	SupplierName  *string          `json:"supplier_name" binding:"omitempty,max=255"`
	TaxPercentage *decimal.Decimal `json:"tax_percentage"`
	// ClearTaxPercentage reverts the product to the pharmacy default rate.
	ClearTaxPercentage bool `json:"clear_tax_percentage"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name expiry_date stock_quantity selling_price created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
