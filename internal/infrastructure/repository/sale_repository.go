package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the sale and its lines in one transaction.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	err := r.db.WithContext(ctx).Create(sale).Error
	if err != nil && isUniqueViolation(err) {
		return domainRepo.ErrDuplicateInvoice
	}
	return err
}

func (r *saleRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		First(&sale, "invoice_number = ?", invoiceNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{})
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination != nil {
		params.Pagination.Validate()
		query = query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage)
	}

	err := query.
		Preload("Items", orderItems).
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) Summarize(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	var row struct {
		Revenue decimal.NullDecimal
		Profit  decimal.NullDecimal
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Select("SUM(total_amount) AS revenue, SUM(total_profit) AS profit, COUNT(*) AS count").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domainRepo.SalesSummary{
		Revenue: row.Revenue.Decimal,
		Profit:  row.Profit.Decimal,
		Count:   row.Count,
	}, nil
}

func (r *saleRepository) Search(ctx context.Context, query string, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	pattern := likePattern(strings.ToLower(query))
	q := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("LOWER(customer_name) LIKE ? OR LOWER(customer_contact) LIKE ? OR LOWER(invoice_number) LIKE ?",
			pattern, pattern, pattern)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := q.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items", orderItems).
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
