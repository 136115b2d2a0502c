package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BillingConfig tunes the billing engine.
type BillingConfig struct {
	// PhoneRegion is the default region for customer contacts, e.g. "IN".
	// Empty disables contact validation.
	PhoneRegion        string
	MaxInvoiceAttempts int
	TaxFallback        decimal.Decimal
}

// BillingOption customises a BillingService.
type BillingOption func(*BillingService)

// WithInvoiceNumbers replaces the invoice number generator.
func WithInvoiceNumbers(fn InvoiceNumberFunc) BillingOption {
	return func(s *BillingService) { s.nextInvoice = fn }
}

// WithBillingClock replaces time.Now.
func WithBillingClock(now func() time.Time) BillingOption {
	return func(s *BillingService) { s.now = now }
}

// BillingService turns carts into persisted sales
type BillingService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	settings    SettingsProvider
	cfg         BillingConfig
	validate    *validator.Validate
	log         *logrus.Logger
	nextInvoice InvoiceNumberFunc
	now         func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	settings SettingsProvider,
	cfg BillingConfig,
	log *logrus.Logger,
	opts ...BillingOption,
) *BillingService {
	if cfg.MaxInvoiceAttempts < 1 {
		cfg.MaxInvoiceAttempts = 5
	}
	if cfg.TaxFallback.IsZero() {
		cfg.TaxFallback = DefaultTaxFallback
	}
	s := &BillingService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		settings:    settings,
		cfg:         cfg,
		validate:    newValidator(),
		log:         log,
		nextInvoice: NewInvoiceNumber,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaleItemInput is one cart line
type SaleItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	CustomerName     string             `json:"customer_name" validate:"max=255"`
	CustomerContact  string             `json:"customer_contact" validate:"max=32"`
	Items            []SaleItemInput    `json:"items" validate:"required,min=1,dive"`
	Discount         decimal.Decimal    `json:"discount"`
	PaymentMethod    enum.PaymentMethod `json:"payment_method"`
	GatewayOrderID   string             `json:"gateway_order_id" validate:"max=100"`
	GatewayPaymentID string             `json:"gateway_payment_id" validate:"max=100"`
	// CreatedBy is the authenticated user; never read from the request body.
	CreatedBy string `json:"-"`
}

// pricedLine is a validated cart line ready to commit.
type pricedLine struct {
	item     entity.SaleItem
	amounts  LineAmounts
	quantity int
}

// CreateSale validates the cart, prices it, atomically takes the stock and
// records the sale. Either a complete sale is returned or nothing changes.
func (s *BillingService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	lines, err := s.priceCart(ctx, input.Items, settings)
	if err != nil {
		return nil, err
	}

	amounts := make([]LineAmounts, len(lines))
	for i := range lines {
		amounts[i] = lines[i].amounts
	}
	totals := ComputeTotals(amounts, input.Discount)
	if input.Discount.GreaterThan(totals.SubTotal.Add(totals.TotalTax)) {
		return nil, apperror.NewFieldValidationError("discount", "must not exceed the bill amount")
	}

	committed, err := s.commitStock(ctx, lines)
	if err != nil {
		return nil, err
	}

	items := make([]entity.SaleItem, len(lines))
	for i := range lines {
		items[i] = lines[i].item
	}
	sale := &entity.Sale{
		CustomerName:     input.CustomerName,
		CustomerContact:  input.CustomerContact,
		Items:            items,
		SubTotal:         totals.SubTotal,
		Discount:         totals.Discount,
		TotalTax:         totals.TotalTax,
		CGSTAmount:       totals.CGST,
		SGSTAmount:       totals.SGST,
		IGSTAmount:       totals.IGST,
		TotalAmount:      totals.TotalAmount,
		TotalProfit:      totals.TotalProfit,
		PaymentMethod:    input.PaymentMethod,
		GatewayOrderID:   input.GatewayOrderID,
		GatewayPaymentID: input.GatewayPaymentID,
		PharmacyGSTNo:    settings.PharmacyGSTNo,
		CreatedBy:        input.CreatedBy,
		CreatedAt:        s.now(),
	}

	if err := s.persist(ctx, sale); err != nil {
		s.rollbackStock(ctx, committed)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"invoice": sale.InvoiceNumber,
		"lines":   len(sale.Items),
		"total":   sale.TotalAmount.StringFixed(2),
		"payment": sale.PaymentMethod,
	}).Info("sale created")

	return sale, nil
}

// SuggestDiscount returns the discount the pharmacy policy proposes for a
// subtotal. Callers are free to submit a different amount.
func (s *BillingService) SuggestDiscount(ctx context.Context, subTotal decimal.Decimal) (decimal.Decimal, error) {
	if subTotal.IsNegative() {
		return decimal.Zero, apperror.NewFieldValidationError("subtotal", "must not be negative")
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return SuggestDiscount(subTotal, settings), nil
}

// validateInput checks the request shape and normalises optional fields.
func (s *BillingService) validateInput(input *CreateSaleInput) error {
	if err := validateStruct(s.validate, input); err != nil {
		return err
	}

	var fieldErrors []apperror.FieldError
	if input.Discount.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "discount", Message: "must not be negative"})
	}

	if input.PaymentMethod == "" {
		input.PaymentMethod = enum.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payment_method", Message: "must be one of Cash, Card, UPI"})
	}

	if input.CustomerContact != "" && s.cfg.PhoneRegion != "" {
		phone, err := normalizePhone(input.CustomerContact, s.cfg.PhoneRegion)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer_contact", Message: "must be a valid phone number"})
		} else {
			input.CustomerContact = phone
		}
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	input.Discount = input.Discount.Round(2)
	return nil
}

// priceCart is the validation pass. It loads every product, checks the
// combined demand per product against stock and snapshots each line.
// Nothing is written.
func (s *BillingService) priceCart(ctx context.Context, cart []SaleItemInput, settings *entity.PharmacySettings) ([]pricedLine, error) {
	ids := make([]uuid.UUID, 0, len(cart))
	demand := make(map[uuid.UUID]int, len(cart))
	for _, item := range cart {
		if _, seen := demand[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		demand[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.internal("priceCart", "load products", ids, err)
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	lines := make([]pricedLine, 0, len(cart))
	for pos, item := range cart {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, apperror.NewProductNotFoundError(item.ProductID.String())
		}
		if demand[product.ID] > product.StockQuantity {
			return nil, apperror.NewInsufficientStockError(product.Name, product.StockQuantity, demand[product.ID])
		}

		rate := TaxRate(product, settings, s.cfg.TaxFallback)
		amounts := ComputeLine(product.SellingPrice, product.PurchasePrice, item.Quantity, rate)
		lines = append(lines, pricedLine{
			quantity: item.Quantity,
			amounts:  amounts,
			item: entity.SaleItem{
				Position:      pos,
				ProductID:     product.ID,
				Name:          product.Name,
				BrandName:     product.BrandName,
				Category:      product.Category,
				BatchNumber:   product.BatchNumber,
				ExpiryDate:    product.ExpiryDate,
				Quantity:      item.Quantity,
				UnitPrice:     product.SellingPrice,
				PurchasePrice: product.PurchasePrice,
				LineTotal:     amounts.Total,
				TaxPercent:    rate,
				TaxAmount:     amounts.Tax,
				LineProfit:    amounts.Profit,
			},
		})
	}
	return lines, nil
}

// commitStock decrements stock line by line in cart order. If any line
// loses a race the lines already taken are put back.
func (s *BillingService) commitStock(ctx context.Context, lines []pricedLine) ([]pricedLine, error) {
	committed := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		ok, err := s.productRepo.DecrementStockIfAvailable(ctx, line.item.ProductID, line.quantity)
		if err != nil {
			s.rollbackStock(ctx, committed)
			return nil, s.internal("commitStock", "decrement stock", line.item.ProductID, err)
		}
		if !ok {
			s.rollbackStock(ctx, committed)
			s.log.WithFields(logrus.Fields{
				"product_id": line.item.ProductID,
				"quantity":   line.quantity,
			}).Warn("stock conflict while committing sale")
			return nil, apperror.ErrStockConflict
		}
		committed = append(committed, line)
	}
	return committed, nil
}

// rollbackStock restores committed lines. It ignores cancellation of ctx so
// an abandoned request still returns its stock.
func (s *BillingService) rollbackStock(ctx context.Context, committed []pricedLine) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range committed {
		if err := s.productRepo.RestoreStock(ctx, line.item.ProductID, line.quantity); err != nil {
			logger.LogError(s.log, "BillingService", "rollbackStock", "restore stock", map[string]any{
				"product_id": line.item.ProductID,
				"quantity":   line.quantity,
			}, err)
		}
	}
}

// persist stores the sale, drawing a fresh invoice number whenever the
// previous one collides.
func (s *BillingService) persist(ctx context.Context, sale *entity.Sale) error {
	for attempt := 1; attempt <= s.cfg.MaxInvoiceAttempts; attempt++ {
		sale.InvoiceNumber = s.nextInvoice(sale.CreatedAt)
		err := s.saleRepo.Create(ctx, sale)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateInvoice) {
			return s.internal("persist", "create sale", sale.InvoiceNumber, err)
		}
		s.log.WithFields(logrus.Fields{
			"invoice": sale.InvoiceNumber,
			"attempt": attempt,
		}).Warn("invoice number collision, regenerating")
	}
	return s.internal("persist", "allocate invoice number", nil,
		errors.New("invoice number collisions exhausted every attempt"))
}

func (s *BillingService) internal(funcName, context string, data any, err error) error {
	logger.LogError(s.log, "BillingService", funcName, context, data, err)
	return apperror.ErrInternalServer
}
