package memory_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/memory"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

var base = time.Date(2026, time.October, 1, 10, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, repo domainRepo.ProductRepository, name string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          name,
		BatchNumber:   "B1",
		ExpiryDate:    base.AddDate(1, 0, 0),
		SellingPrice:  decimal.NewFromInt(10),
		StockQuantity: stock,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create %s: %v", name, err)
	}
	return p
}

func seedSale(t *testing.T, repo domainRepo.SaleRepository, invoice string, at time.Time, total int64) {
	t.Helper()
	sale := &entity.Sale{
		InvoiceNumber: invoice,
		CustomerName:  "Customer " + invoice,
		CreatedAt:     at,
		TotalAmount:   decimal.NewFromInt(total),
		TotalProfit:   decimal.NewFromInt(total / 10),
		Items:         []entity.SaleItem{{Name: "Aspirin", Quantity: 1}},
	}
	if err := repo.Create(context.Background(), sale); err != nil {
		t.Fatalf("Create %s: %v", invoice, err)
	}
}

func TestProductRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewProductRepository(memory.NewStore())
	rate := decimal.NewFromInt(5)
	p := seedProduct(t, repo, "Aspirin", 4)
	p.TaxPercentage = &rate
	if err := repo.Update(context.Background(), p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.StockQuantity = 99
	*got.TaxPercentage = decimal.NewFromInt(18)

	again, _ := repo.GetByID(context.Background(), p.ID)
	if again.StockQuantity != 4 || !again.TaxPercentage.Equal(rate) {
		t.Fatalf("stored product changed through a returned copy: %+v", again)
	}

	missing, err := repo.GetByID(context.Background(), uuid.New())
	if missing != nil || err != nil {
		t.Fatalf("missing product = %v, %v", missing, err)
	}
}

func TestDecrementStockIfAvailable(t *testing.T) {
	repo := memory.NewProductRepository(memory.NewStore())
	ctx := context.Background()
	p := seedProduct(t, repo, "Aspirin", 3)

	cases := []struct {
		amount    int
		applied   bool
		remaining int
	}{
		{4, false, 3},
		{2, true, 1},
		{1, true, 0},
		{1, false, 0},
	}
	for _, tc := range cases {
		ok, err := repo.DecrementStockIfAvailable(ctx, p.ID, tc.amount)
		if err != nil {
			t.Fatalf("DecrementStockIfAvailable: %v", err)
		}
		got, _ := repo.GetByID(ctx, p.ID)
		if ok != tc.applied || got.StockQuantity != tc.remaining {
			t.Fatalf("decrement %d: applied %v stock %d, want %v %d", tc.amount, ok, got.StockQuantity, tc.applied, tc.remaining)
		}
	}

	if ok, _ := repo.DecrementStockIfAvailable(ctx, uuid.New(), 1); ok {
		t.Fatalf("decrement of an unknown product should not apply")
	}

	if err := repo.RestoreStock(ctx, p.ID, 2); err != nil {
		t.Fatalf("RestoreStock: %v", err)
	}
	got, _ := repo.GetByID(ctx, p.ID)
	if got.StockQuantity != 2 {
		t.Fatalf("stock after restore = %d", got.StockQuantity)
	}
}

func TestDecrementStockIfAvailable_Concurrent(t *testing.T) {
	repo := memory.NewProductRepository(memory.NewStore())
	p := seedProduct(t, repo, "Aspirin", 10)

	var applied atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := repo.DecrementStockIfAvailable(context.Background(), p.ID, 1); ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	got, _ := repo.GetByID(context.Background(), p.ID)
	if applied.Load() != 10 || got.StockQuantity != 0 {
		t.Fatalf("applied %d, stock %d", applied.Load(), got.StockQuantity)
	}
}

func TestProductRepository_Alerts(t *testing.T) {
	repo := memory.NewProductRepository(memory.NewStore())
	ctx := context.Background()
	now := base

	expired := seedProduct(t, repo, "Expired", 50)
	expired.ExpiryDate = now.Add(-time.Hour)
	soon := seedProduct(t, repo, "Soon", 2)
	soon.ExpiryDate = now.Add(30 * 24 * time.Hour)
	later := seedProduct(t, repo, "Later", 7)
	later.ExpiryDate = now.Add(31 * 24 * time.Hour)
	for _, p := range []*entity.Product{expired, soon, later} {
		if err := repo.Update(ctx, p); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	low, _ := repo.ListLowStock(ctx, 10)
	if len(low) != 2 || low[0].Name != "Soon" || low[1].Name != "Later" {
		t.Fatalf("low stock = %v", names(low))
	}
	gone, _ := repo.ListExpired(ctx, now)
	if len(gone) != 1 || gone[0].Name != "Expired" {
		t.Fatalf("expired = %v", names(gone))
	}
	window := now.Add(30 * 24 * time.Hour)
	expiring, _ := repo.ListExpiringBetween(ctx, now, window)
	if len(expiring) != 1 || expiring[0].Name != "Soon" {
		t.Fatalf("expiring = %v", names(expiring))
	}
	if n, _ := repo.CountExpiringBetween(ctx, now, window); n != 1 {
		t.Fatalf("expiring count = %d", n)
	}
}

func TestSaleRepository_DuplicateInvoice(t *testing.T) {
	repo := memory.NewSaleRepository(memory.NewStore())
	seedSale(t, repo, "INV-1", base, 100)

	err := repo.Create(context.Background(), &entity.Sale{InvoiceNumber: "INV-1"})
	if !errors.Is(err, domainRepo.ErrDuplicateInvoice) {
		t.Fatalf("err = %v, want ErrDuplicateInvoice", err)
	}

	got, err := repo.GetByInvoiceNumber(context.Background(), "INV-1")
	if err != nil || got == nil {
		t.Fatalf("GetByInvoiceNumber = %v, %v", got, err)
	}
	if got.Items[0].SaleID != got.ID {
		t.Fatalf("items not linked to their sale")
	}
	if missing, _ := repo.GetByInvoiceNumber(context.Background(), "INV-2"); missing != nil {
		t.Fatalf("unknown invoice returned %v", missing)
	}
}

func TestSaleRepository_ListAndSummarize(t *testing.T) {
	repo := memory.NewSaleRepository(memory.NewStore())
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedSale(t, repo, fmt.Sprintf("INV-%d", i), base.AddDate(0, 0, i), int64(100*(i+1)))
	}
	// Same timestamp as INV-4 but recorded later, so it lists first.
	seedSale(t, repo, "INV-TIE", base.AddDate(0, 0, 4), 50)

	all, total, err := repo.List(ctx, &domainRepo.SaleFilterParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 6 || all[0].InvoiceNumber != "INV-TIE" || all[1].InvoiceNumber != "INV-4" || all[5].InvoiceNumber != "INV-0" {
		t.Fatalf("order = %v (total %d)", invoices(all), total)
	}

	start, end := base.AddDate(0, 0, 1), base.AddDate(0, 0, 3)
	page, total, _ := repo.List(ctx, &domainRepo.SaleFilterParams{
		StartDate:  &start,
		EndDate:    &end,
		Pagination: pagination.New(2, 2),
	})
	if total != 3 || len(page) != 1 || page[0].InvoiceNumber != "INV-1" {
		t.Fatalf("bounded page = %v (total %d)", invoices(page), total)
	}

	summary, err := repo.Summarize(ctx, start, end)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Count != 3 || !summary.Revenue.Equal(decimal.NewFromInt(900)) || !summary.Profit.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestSaleRepository_Search(t *testing.T) {
	repo := memory.NewSaleRepository(memory.NewStore())
	seedSale(t, repo, "INV-ALPHA", base, 10)
	seedSale(t, repo, "INV-BETA", base.Add(time.Hour), 10)

	found, total, err := repo.Search(context.Background(), "alpha", pagination.New(1, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || found[0].InvoiceNumber != "INV-ALPHA" {
		t.Fatalf("search = %v", invoices(found))
	}

	both, total, _ := repo.Search(context.Background(), "customer inv", pagination.New(1, 10))
	if total != 2 || both[0].InvoiceNumber != "INV-BETA" {
		t.Fatalf("search by name = %v", invoices(both))
	}

	beyond, total, err := repo.Search(context.Background(), "inv", &pagination.PaginationParams{Page: math.MaxInt, PerPage: 100})
	if err != nil || total != 2 || len(beyond) != 0 {
		t.Fatalf("huge page = %v, %d, %v", invoices(beyond), total, err)
	}
	listed, _, err := repo.List(context.Background(), &domainRepo.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: math.MaxInt, PerPage: 100},
	})
	if err != nil || len(listed) != 0 {
		t.Fatalf("huge list page = %v, %v", invoices(listed), err)
	}
}

func TestSettingsRepository_SingleRow(t *testing.T) {
	repo := memory.NewSettingsRepository(memory.NewStore())
	ctx := context.Background()

	if got, err := repo.Get(ctx); got != nil || err != nil {
		t.Fatalf("empty store Get = %v, %v", got, err)
	}
	if err := repo.Create(ctx, entity.DefaultPharmacySettings()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, entity.DefaultPharmacySettings()); !errors.Is(err, domainRepo.ErrSettingsExist) {
		t.Fatalf("second Create = %v, want ErrSettingsExist", err)
	}

	got, _ := repo.Get(ctx)
	if got.ID != entity.PharmacySettingsID {
		t.Fatalf("settings id = %v", got.ID)
	}
}

func TestIdempotencyRepository(t *testing.T) {
	repo := memory.NewIdempotencyRepository(memory.NewStore())
	ctx := context.Background()

	keys := []*entity.IdempotencyKey{
		{Key: "k1", UserID: "u1", Endpoint: "POST /api/v1/sales", ResponseCode: 201, ExpiresAt: base.Add(time.Hour)},
		{Key: "k1", UserID: "u2", Endpoint: "POST /api/v1/sales", ResponseCode: 201, ExpiresAt: base.Add(-time.Hour)},
	}
	for _, k := range keys {
		if err := repo.Create(ctx, k); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if got, _ := repo.Get(ctx, "k1", "u1", "POST /api/v1/sales"); got == nil || got.ResponseCode != 201 {
		t.Fatalf("Get = %v", got)
	}
	if got, _ := repo.Get(ctx, "k1", "u1", "POST /api/v1/products"); got != nil {
		t.Fatalf("keys must be scoped by endpoint")
	}

	removed, err := repo.DeleteExpired(ctx, base)
	if err != nil || removed != 1 {
		t.Fatalf("DeleteExpired = %d, %v", removed, err)
	}
	if got, _ := repo.Get(ctx, "k1", "u2", "POST /api/v1/sales"); got != nil {
		t.Fatalf("expired key still stored")
	}

	if err := repo.Delete(ctx, "k1", "u1", "POST /api/v1/sales"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.Get(ctx, "k1", "u1", "POST /api/v1/sales"); got != nil {
		t.Fatalf("deleted key still stored")
	}
}

func names(products []entity.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func invoices(sales []entity.Sale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.InvoiceNumber
	}
	return out
}
