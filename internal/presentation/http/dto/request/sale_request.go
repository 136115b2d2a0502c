package request

import (
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest represents a sale creation request. Field rules are
// enforced by the billing service so every caller gets the same errors.
type CreateSaleRequest struct {
	CustomerName     string            `json:"customer_name"`
	CustomerContact  string            `json:"customer_contact"`
	Items            []SaleItemRequest `json:"items"`
	Discount         decimal.Decimal   `json:"discount"`
	PaymentMethod    string            `json:"payment_method"`
	GatewayOrderID   string            `json:"gateway_order_id"`
	GatewayPaymentID string            `json:"gateway_payment_id"`
}

// DateRangeRequest is an optional yyyy-mm-dd date window
type DateRangeRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// PeriodReportRequest represents period report query parameters
type PeriodReportRequest struct {
	DateRangeRequest
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// ExportRequest represents export query parameters
type ExportRequest struct {
	DateRangeRequest
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// SearchSalesRequest represents sale search query parameters
type SearchSalesRequest struct {
	Query   string `form:"q"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// DiscountSuggestionRequest carries the cart subtotal
type DiscountSuggestionRequest struct {
	SubTotal string `form:"subtotal" binding:"required"`
}
