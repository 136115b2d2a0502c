package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ErrDuplicateInvoice is returned by Create when the invoice number is taken.
var ErrDuplicateInvoice = errors.New("invoice number already exists")

// SaleFilterParams selects a window of the ledger, newest first.
type SaleFilterParams struct {
	// Pagination nil means every matching sale.
	Pagination *pagination.PaginationParams
	StartDate  *time.Time
	EndDate    *time.Time
}

// SalesSummary aggregates sales over a period.
type SalesSummary struct {
	Revenue decimal.Decimal
	Profit  decimal.Decimal
	Count   int64
}

// SaleRepository is the append-only ledger
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByInvoiceNumber returns nil, nil when no sale has that number.
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// Summarize aggregates every sale with from <= created_at <= to.
	Summarize(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	// Search matches query as a case-insensitive substring of customer name,
	// customer contact or invoice number.
	Search(ctx context.Context, query string, params *pagination.PaginationParams) ([]entity.Sale, int64, error)
}
