package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
)

// ProductFilterParams narrows a catalog listing
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // matches name or brand, case-insensitive
	Category   string
	// LowStockBelow, when positive, keeps only products with stock below it.
	LowStockBelow int
	SortBy        string // name, expiry_date, stock_quantity, selling_price, created_at
	SortOrder     string // asc or desc
}

// ProductRepository is the catalog store
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	Count(ctx context.Context) (int64, error)

	// Inventory alerts.
	ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	ListExpired(ctx context.Context, asOf time.Time) ([]entity.Product, error)
	// ListExpiringBetween returns products with from < expiry <= to.
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]entity.Product, error)
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)

	// DecrementStockIfAvailable subtracts amount only when the current stock
	// covers it, as a single atomic step. It reports whether it applied.
	DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	// RestoreStock adds amount back; used to undo a decrement.
	RestoreStock(ctx context.Context, id uuid.UUID, amount int) error
}
