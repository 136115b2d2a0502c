package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/memory"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
)

func newProductService(t *testing.T) *service.ProductService {
	t.Helper()
	return service.NewProductService(memory.NewProductRepository(memory.NewStore()), logger.Discard())
}

func validProductInput(name string, stock int) *service.CreateProductInput {
	rate := dec("12.005")
	return &service.CreateProductInput{
		Name:          "  " + name + "  ",
		BrandName:     "Generic",
		Category:      "Tablet",
		BatchNumber:   "B-1",
		ExpiryDate:    testNow.AddDate(1, 0, 0),
		PurchasePrice: dec("8.499"),
		SellingPrice:  dec("10"),
		StockQuantity: stock,
		TaxPercentage: &rate,
	}
}

func TestProductService_Lifecycle(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validProductInput("Paracetamol", 20))
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if created.Name != "Paracetamol" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}
	requireDecimal(t, "purchase price", created.PurchasePrice, "8.5")
	requireDecimal(t, "tax rate", *created.TaxPercentage, "12.01")

	name := "Paracetamol 650"
	stock := 35
	updated, err := svc.UpdateProduct(ctx, &service.UpdateProductInput{
		ID:                 created.ID,
		Name:               &name,
		StockQuantity:      &stock,
		ClearTaxPercentage: true,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Name != name || updated.StockQuantity != 35 || updated.TaxPercentage != nil {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.BrandName != "Generic" {
		t.Fatalf("untouched field changed: %q", updated.BrandName)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	_, err = svc.GetProduct(ctx, created.ID)
	requireAppError(t, err, apperror.TypeNotFound)

	err = svc.DeleteProduct(ctx, uuid.New())
	requireAppError(t, err, apperror.TypeNotFound)
}

func TestProductService_Validation(t *testing.T) {
	svc := newProductService(t)

	cases := []struct {
		name   string
		mutate func(*service.CreateProductInput)
		field  string
	}{
		{"blank name", func(in *service.CreateProductInput) { in.Name = "   " }, "name"},
		{"no batch", func(in *service.CreateProductInput) { in.BatchNumber = "" }, "batch_number"},
		{"no expiry", func(in *service.CreateProductInput) { in.ExpiryDate = time.Time{} }, "expiry_date"},
		{"negative price", func(in *service.CreateProductInput) { in.SellingPrice = dec("-1") }, "selling_price"},
		{"negative stock", func(in *service.CreateProductInput) { in.StockQuantity = -1 }, "stock_quantity"},
		{"rate above 100", func(in *service.CreateProductInput) {
			r := dec("150")
			in.TaxPercentage = &r
		}, "tax_percentage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProductInput("Test", 1)
			tc.mutate(in)
			_, err := svc.CreateProduct(context.Background(), in)
			requireField(t, requireAppError(t, err, apperror.TypeValidation), tc.field)
		})
	}
}

func TestProductService_ListFilters(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()
	for _, p := range []struct {
		name  string
		stock int
	}{{"Amoxicillin", 50}, {"Aspirin", 3}, {"Zinc", 8}} {
		if _, err := svc.CreateProduct(ctx, validProductInput(p.name, p.stock)); err != nil {
			t.Fatalf("CreateProduct %s: %v", p.name, err)
		}
	}

	cases := []struct {
		name   string
		params domainRepo.ProductFilterParams
		want   []string
	}{
		{"search", domainRepo.ProductFilterParams{Search: "asp"}, []string{"Aspirin"}},
		{"low stock by name", domainRepo.ProductFilterParams{LowStockBelow: 10, SortBy: "name", SortOrder: "asc"}, []string{"Aspirin", "Zinc"}},
		{"stock descending", domainRepo.ProductFilterParams{SortBy: "stock_quantity", SortOrder: "desc"}, []string{"Amoxicillin", "Zinc", "Aspirin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := tc.params
			result, err := svc.ListProducts(ctx, &params)
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if len(result.Items) != len(tc.want) {
				t.Fatalf("got %d products, want %d", len(result.Items), len(tc.want))
			}
			for i, p := range result.Items {
				if p.Name != tc.want[i] {
					t.Fatalf("item %d = %s, want %s", i, p.Name, tc.want[i])
				}
			}
		})
	}

	page, err := svc.ListProducts(ctx, &domainRepo.ProductFilterParams{
		Pagination: pagination.New(2, 2),
		SortBy:     "name",
		SortOrder:  "asc",
	})
	if err != nil {
		t.Fatalf("ListProducts page: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Zinc" || page.Pagination.Total != 3 {
		t.Fatalf("page 2 = %+v", page)
	}
}
