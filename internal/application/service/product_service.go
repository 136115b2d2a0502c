package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductService handles catalog maintenance
type ProductService struct {
	productRepo repository.ProductRepository
	log         *logrus.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, log *logrus.Logger) *ProductService {
	return &ProductService{productRepo: productRepo, log: log}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name          string
	BrandName     string
	Category      string
	BatchNumber   string
	ExpiryDate    time.Time
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	StockQuantity int
	SupplierName  string
	TaxPercentage *decimal.Decimal
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	product := &entity.Product{
		Name:          strings.TrimSpace(input.Name),
		BrandName:     strings.TrimSpace(input.BrandName),
		Category:      strings.TrimSpace(input.Category),
		BatchNumber:   strings.TrimSpace(input.BatchNumber),
		ExpiryDate:    input.ExpiryDate,
		PurchasePrice: input.PurchasePrice.Round(2),
		SellingPrice:  input.SellingPrice.Round(2),
		StockQuantity: input.StockQuantity,
		SupplierName:  strings.TrimSpace(input.SupplierName),
		TaxPercentage: roundRate(input.TaxPercentage),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, s.internal("CreateProduct", "create product", product.Name, err)
	}
	s.log.WithFields(logrus.Fields{"product_id": product.ID, "name": product.Name}).Info("product created")
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.internal("GetProduct", "load product", id, err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, s.internal("ListProducts", "list products", nil, err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	ID            uuid.UUID
	Name          *string
	BrandName     *string
	Category      *string
	BatchNumber   *string
	ExpiryDate    *time.Time
	PurchasePrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	StockQuantity *int
	SupplierName  *string
	TaxPercentage *decimal.Decimal
	// ClearTaxPercentage drops the product's own rate so the pharmacy
	// default applies again.
	ClearTaxPercentage bool
}

// UpdateProduct updates a product. Past sales are unaffected because they
// hold their own copies of product data.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.BrandName != nil {
		product.BrandName = strings.TrimSpace(*input.BrandName)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.BatchNumber != nil {
		product.BatchNumber = strings.TrimSpace(*input.BatchNumber)
	}
	if input.ExpiryDate != nil {
		product.ExpiryDate = *input.ExpiryDate
	}
	if input.PurchasePrice != nil {
		product.PurchasePrice = input.PurchasePrice.Round(2)
	}
	if input.SellingPrice != nil {
		product.SellingPrice = input.SellingPrice.Round(2)
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.SupplierName != nil {
		product.SupplierName = strings.TrimSpace(*input.SupplierName)
	}
	switch {
	case input.ClearTaxPercentage:
		product.TaxPercentage = nil
	case input.TaxPercentage != nil:
		product.TaxPercentage = roundRate(input.TaxPercentage)
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, s.internal("UpdateProduct", "update product", product.ID, err)
	}
	return product, nil
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return s.internal("DeleteProduct", "delete product", id, err)
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func validateProduct(p *entity.Product) error {
	var fieldErrors []apperror.FieldError
	if p.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if p.BatchNumber == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "batch_number", Message: "is required"})
	}
	if p.ExpiryDate.IsZero() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "expiry_date", Message: "is required"})
	}
	if p.PurchasePrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "purchase_price", Message: "must not be negative"})
	}
	if p.SellingPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "selling_price", Message: "must not be negative"})
	}
	if p.StockQuantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "stock_quantity", Message: "must not be negative"})
	}
	if p.TaxPercentage != nil && (p.TaxPercentage.IsNegative() || p.TaxPercentage.GreaterThan(hundred)) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_percentage", Message: "must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func roundRate(rate *decimal.Decimal) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	r := rate.Round(2)
	return &r
}

func (s *ProductService) internal(funcName, context string, data any, err error) error {
	logger.LogError(s.log, "ProductService", funcName, context, data, err)
	return apperror.ErrInternalServer
}
