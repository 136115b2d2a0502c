package database

import (
	"context"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type demoProduct struct {
	name, brand, category, batch, supplier string
	purchase, selling                      string
	stock                                  int
	expiresInDays                          int
	tax                                    string // empty means use the pharmacy default
}

var demoCatalog = []demoProduct{
	{"Paracetamol 500mg", "Crocin", "Analgesic", "CR2301", "MedLife Distributors", "18.50", "30.00", 120, 400, "12"},
	{"Amoxicillin 250mg", "Mox", "Antibiotic", "MX1188", "Sun Pharma Traders", "45.00", "72.00", 8, 200, "12"},
	{"Cetirizine 10mg", "Okacet", "Antihistamine", "OK5521", "Cipla Wholesale", "9.00", "18.00", 60, 20, ""},
	{"ORS Sachet", "Electral", "Rehydration", "EL0091", "FDC Depot", "15.00", "21.00", 200, 540, "0"},
	{"Pantoprazole 40mg", "Pan", "Antacid", "PN7730", "Alkem Agencies", "62.00", "98.00", 35, -10, "12"},
	{"Vitamin C 500mg", "Limcee", "Supplement", "LM3307", "Abbott Stockist", "20.00", "28.00", 4, 90, "5"},
}

// SeedDemoCatalog inserts a small catalog when the product table is empty.
// It goes through the repository so it works for every storage driver.
func SeedDemoCatalog(ctx context.Context, repo repository.ProductRepository, log *logrus.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.WithField("products", count).Info("catalog already populated, skipping demo seed")
		return nil
	}

	now := time.Now()
	for _, d := range demoCatalog {
		p := &entity.Product{
			Name:          d.name,
			BrandName:     d.brand,
			Category:      d.category,
			BatchNumber:   d.batch,
			SupplierName:  d.supplier,
			PurchasePrice: decimal.RequireFromString(d.purchase),
			SellingPrice:  decimal.RequireFromString(d.selling),
			StockQuantity: d.stock,
			ExpiryDate:    now.AddDate(0, 0, d.expiresInDays),
		}
		if d.tax != "" {
			rate := decimal.RequireFromString(d.tax)
			p.TaxPercentage = &rate
		}
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
	}

	log.WithField("products", len(demoCatalog)).Info("demo catalog seeded")
	return nil
}
