package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/memory"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const testGSTIN = "27AAPFU0939F1ZV"

var testNow = time.Date(2026, time.October, 17, 14, 30, 0, 0, time.Local)

type fixture struct {
	products domainRepo.ProductRepository
	sales    domainRepo.SaleRepository
	settings *service.SettingsService
	billing  *service.BillingService
	reports  *service.ReportService
}

type fixtureOptions struct {
	products    domainRepo.ProductRepository
	sales       domainRepo.SaleRepository
	billingCfg  service.BillingConfig
	billingOpts []service.BillingOption
	reportOpts  []service.ReportOption
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, fixtureOptions{})
}

func newFixtureWith(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.Discard()

	f := &fixture{
		products: opts.products,
		sales:    opts.sales,
	}
	if f.products == nil {
		f.products = memory.NewProductRepository(store)
	}
	if f.sales == nil {
		f.sales = memory.NewSaleRepository(store)
	}
	f.settings = service.NewSettingsService(memory.NewSettingsRepository(store), log)

	clock := func() time.Time { return testNow }
	f.billing = service.NewBillingService(f.products, f.sales, f.settings, opts.billingCfg, log,
		append([]service.BillingOption{service.WithBillingClock(clock)}, opts.billingOpts...)...)
	f.reports = service.NewReportService(f.sales, f.products, service.ReportConfig{}, log,
		append([]service.ReportOption{service.WithReportClock(clock)}, opts.reportOpts...)...)
	return f
}

// registerGST makes tax applicable by setting a GSTIN.
func (f *fixture) registerGST(t *testing.T) {
	t.Helper()
	if _, err := f.settings.UpdateSettings(context.Background(), &service.UpdateSettingsInput{
		PharmacyName:  "City Pharmacy",
		PharmacyGSTNo: testGSTIN,
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
}

type productSeed struct {
	name     string
	brand    string
	category string
	price    string
	cost     string
	stock    int
	rate     string // empty means no product rate
	expiry   time.Time
}

func (f *fixture) addProduct(t *testing.T, seed productSeed) *entity.Product {
	t.Helper()
	if seed.expiry.IsZero() {
		seed.expiry = testNow.AddDate(1, 0, 0)
	}
	if seed.cost == "" {
		seed.cost = "0"
	}
	p := &entity.Product{
		Name:          seed.name,
		BrandName:     seed.brand,
		Category:      seed.category,
		BatchNumber:   "B-" + seed.name,
		ExpiryDate:    seed.expiry,
		PurchasePrice: decimal.RequireFromString(seed.cost),
		SellingPrice:  decimal.RequireFromString(seed.price),
		StockQuantity: seed.stock,
	}
	if seed.rate != "" {
		rate := decimal.RequireFromString(seed.rate)
		p.TaxPercentage = &rate
	}
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product %s: %v", seed.name, err)
	}
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("GetByID(%s) = %v, %v", id, p, err)
	}
	return p.StockQuantity
}

// recordSale writes a sale straight into the ledger at a fixed time.
func (f *fixture) recordSale(t *testing.T, invoice string, at time.Time, total, profit string, customer string) {
	t.Helper()
	sale := &entity.Sale{
		InvoiceNumber: invoice,
		CustomerName:  customer,
		Items: []entity.SaleItem{{
			ProductID: uuid.New(),
			Name:      "Item " + invoice,
			Quantity:  1,
			UnitPrice: decimal.RequireFromString(total),
			LineTotal: decimal.RequireFromString(total),
		}},
		SubTotal:      decimal.RequireFromString(total),
		TotalAmount:   decimal.RequireFromString(total),
		TotalProfit:   decimal.RequireFromString(profit),
		PaymentMethod: enum.PaymentMethodCash,
		CreatedAt:     at,
	}
	if err := f.sales.Create(context.Background(), sale); err != nil {
		t.Fatalf("record sale %s: %v", invoice, err)
	}
}

func requireAppError(t *testing.T, err error, errType string) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected %s AppError, got %v", errType, err)
	}
	if appErr.Type != errType {
		t.Fatalf("expected error type %s, got %s (%s)", errType, appErr.Type, appErr.Message)
	}
	return appErr
}

func requireField(t *testing.T, appErr *apperror.AppError, field string) {
	t.Helper()
	for _, fe := range appErr.Errors {
		if fe.Field == field {
			return
		}
	}
	t.Fatalf("expected a field error on %q, got %+v", field, appErr.Errors)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}
