package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/database"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var day = time.Date(2026, time.October, 1, 10, 0, 0, 0, time.UTC)

// setupTestDB connects to a throwaway Postgres database and empties it.
// Every table is truncated, so never point TEST_DATABASE_URL at live data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres integration test")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	if err := database.AutoMigrate(db, logger.Discard()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	err = db.Exec("TRUNCATE TABLE sale_items, sales, products, pharmacy_settings, idempotency_keys").Error
	if err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createProduct(t *testing.T, repo domainRepo.ProductRepository, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          "Paracetamol 500mg",
		BatchNumber:   "B-1",
		ExpiryDate:    day.AddDate(1, 0, 0),
		PurchasePrice: decimal.NewFromInt(8),
		SellingPrice:  decimal.NewFromInt(10),
		StockQuantity: stock,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func newSale(invoice, customer string, total int64, at time.Time) *entity.Sale {
	amount := decimal.NewFromInt(total)
	return &entity.Sale{
		InvoiceNumber: invoice,
		CustomerName:  customer,
		SubTotal:      amount,
		TotalAmount:   amount,
		TotalProfit:   amount.Div(decimal.NewFromInt(5)),
		PaymentMethod: enum.PaymentMethodCash,
		CreatedAt:     at,
		Items: []entity.SaleItem{{
			Position:      0,
			Name:          "Paracetamol 500mg",
			BatchNumber:   "B-1",
			ExpiryDate:    at.AddDate(1, 0, 0),
			Quantity:      1,
			UnitPrice:     amount,
			PurchasePrice: amount,
			LineTotal:     amount,
			LineProfit:    decimal.Zero,
		}},
	}
}

func stockOf(t *testing.T, repo domainRepo.ProductRepository, p *entity.Product) int {
	t.Helper()
	got, err := repo.GetByID(context.Background(), p.ID)
	if err != nil || got == nil {
		t.Fatalf("reload product: %v", err)
	}
	return got.StockQuantity
}

func TestProductRepository_DecrementBoundary(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProductRepository(db)
	ctx := context.Background()
	p := createProduct(t, repo, 3)

	ok, err := repo.DecrementStockIfAvailable(ctx, p.ID, 4)
	if err != nil || ok {
		t.Fatalf("decrement 4 of 3 = %v, %v", ok, err)
	}
	if got := stockOf(t, repo, p); got != 3 {
		t.Fatalf("stock after refused decrement = %d, want 3", got)
	}

	ok, err = repo.DecrementStockIfAvailable(ctx, p.ID, 3)
	if err != nil || !ok {
		t.Fatalf("decrement 3 of 3 = %v, %v", ok, err)
	}
	if got := stockOf(t, repo, p); got != 0 {
		t.Fatalf("stock after decrement = %d, want 0", got)
	}

	if err := repo.RestoreStock(ctx, p.ID, 3); err != nil {
		t.Fatalf("RestoreStock: %v", err)
	}
	if got := stockOf(t, repo, p); got != 3 {
		t.Fatalf("stock after restore = %d, want 3", got)
	}
}

func TestProductRepository_ConcurrentDecrementsNeverOversell(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProductRepository(db)
	p := createProduct(t, repo, 10)

	var wg sync.WaitGroup
	var sold atomic.Int64
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecrementStockIfAvailable(context.Background(), p.ID, 1)
			if err != nil {
				t.Errorf("decrement: %v", err)
				return
			}
			if ok {
				sold.Add(1)
			}
		}()
	}
	wg.Wait()

	if sold.Load() != 10 {
		t.Fatalf("sold %d units out of 10", sold.Load())
	}
	if got := stockOf(t, repo, p); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}
}

func TestSaleRepository_DuplicateInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newSale("INV-20261001-0001", "Asha", 100, day)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, newSale("INV-20261001-0001", "Ravi", 50, day))
	if !errors.Is(err, domainRepo.ErrDuplicateInvoice) {
		t.Fatalf("second create = %v, want ErrDuplicateInvoice", err)
	}

	got, err := repo.GetByInvoiceNumber(ctx, "INV-20261001-0001")
	if err != nil || got == nil || got.CustomerName != "Asha" || len(got.Items) != 1 {
		t.Fatalf("stored sale = %+v, %v", got, err)
	}
}

func TestSaleRepository_Summarize(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	empty, err := repo.Summarize(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Summarize empty: %v", err)
	}
	if !empty.Revenue.IsZero() || !empty.Profit.IsZero() || empty.Count != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}

	for i, s := range []*entity.Sale{
		newSale("INV-A", "Asha", 100, day),
		newSale("INV-B", "Ravi", 250, day.Add(2*time.Hour)),
		newSale("INV-C", "Meena", 999, day.AddDate(0, 0, 3)),
	} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create sale %d: %v", i, err)
		}
	}

	sum, err := repo.Summarize(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !sum.Revenue.Equal(decimal.NewFromInt(350)) || !sum.Profit.Equal(decimal.NewFromInt(70)) || sum.Count != 2 {
		t.Fatalf("summary = revenue %s profit %s count %d", sum.Revenue, sum.Profit, sum.Count)
	}
}

func TestSaleRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newSale("INV-1", "Flat 100% Off Traders", 100, day)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, newSale("INV-2", "Asha 1000 Stores", 100, day.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		query string
		want  []string
	}{
		{"100%", []string{"INV-1"}},
		{"100", []string{"INV-2", "INV-1"}},
		{"inv_", nil},
		{"ASHA", []string{"INV-2"}},
	}
	for _, tc := range cases {
		sales, total, err := repo.Search(ctx, tc.query, pagination.New(1, 10))
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if int(total) != len(tc.want) || len(sales) != len(tc.want) {
			t.Fatalf("Search(%q) found %d (total %d), want %v", tc.query, len(sales), total, tc.want)
		}
		for i, s := range sales {
			if s.InvoiceNumber != tc.want[i] {
				t.Fatalf("Search(%q)[%d] = %s, want %s", tc.query, i, s.InvoiceNumber, tc.want[i])
			}
		}
	}
}

func TestSettingsRepository_CreateOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSettingsRepository(db)
	ctx := context.Background()

	if got, err := repo.Get(ctx); err != nil || got != nil {
		t.Fatalf("Get on empty table = %+v, %v", got, err)
	}
	if err := repo.Create(ctx, entity.DefaultPharmacySettings()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, entity.DefaultPharmacySettings())
	if !errors.Is(err, domainRepo.ErrSettingsExist) {
		t.Fatalf("second create = %v, want ErrSettingsExist", err)
	}
}

func TestIdempotencyRepository_DeleteAndPurge(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	const endpoint = "POST /api/v1/sales"

	for _, user := range []string{"u1", "u2"} {
		err := repo.Create(ctx, &entity.IdempotencyKey{
			Key:          "till-1",
			UserID:       user,
			Endpoint:     endpoint,
			ResponseCode: 201,
			ResponseBody: `{"ok":true}`,
			ExpiresAt:    day.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("create key for %s: %v", user, err)
		}
	}
	// A second store for the same scope keeps the first response.
	err := repo.Create(ctx, &entity.IdempotencyKey{
		Key: "till-1", UserID: "u1", Endpoint: endpoint, ResponseCode: 500, ExpiresAt: day.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if got, _ := repo.Get(ctx, "till-1", "u1", endpoint); got == nil || got.ResponseCode != 201 {
		t.Fatalf("stored key = %+v", got)
	}

	if err := repo.Delete(ctx, "till-1", "u1", endpoint); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.Get(ctx, "till-1", "u1", endpoint); got != nil {
		t.Fatalf("deleted key still stored")
	}
	if got, _ := repo.Get(ctx, "till-1", "u2", endpoint); got == nil {
		t.Fatalf("Delete removed another user's key")
	}

	removed, err := repo.DeleteExpired(ctx, day.Add(2*time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("DeleteExpired = %d, %v", removed, err)
	}
}
