package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

type saleRepository struct {
	s *Store
}

// NewSaleRepository returns a ledger backed by s.
func NewSaleRepository(s *Store) domainRepo.SaleRepository {
	return &saleRepository{s: s}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.invoices[sale.InvoiceNumber]; taken {
		return domainRepo.ErrDuplicateInvoice
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}

	r.s.invoices[sale.InvoiceNumber] = len(r.s.sales)
	r.s.sales = append(r.s.sales, copySale(*sale))
	return nil
}

func (r *saleRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	idx, ok := r.s.invoices[invoiceNumber]
	if !ok {
		return nil, nil
	}
	sale := copySale(r.s.sales[idx])
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	matched := r.newestFirst(func(s *entity.Sale) bool {
		if params.StartDate != nil && s.CreatedAt.Before(*params.StartDate) {
			return false
		}
		if params.EndDate != nil && s.CreatedAt.After(*params.EndDate) {
			return false
		}
		return true
	})

	total := int64(len(matched))
	if params.Pagination != nil {
		params.Pagination.Validate()
		start, end := params.Pagination.Window(len(matched))
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *saleRepository) Summarize(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	summary := &domainRepo.SalesSummary{Revenue: decimal.Zero, Profit: decimal.Zero}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.sales {
		s := &r.s.sales[i]
		if s.CreatedAt.Before(from) || s.CreatedAt.After(to) {
			continue
		}
		summary.Revenue = summary.Revenue.Add(s.TotalAmount)
		summary.Profit = summary.Profit.Add(s.TotalProfit)
		summary.Count++
	}
	return summary, nil
}

func (r *saleRepository) Search(ctx context.Context, query string, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	q := strings.ToLower(query)
	matched := r.newestFirst(func(s *entity.Sale) bool {
		return strings.Contains(strings.ToLower(s.CustomerName), q) ||
			strings.Contains(strings.ToLower(s.CustomerContact), q) ||
			strings.Contains(strings.ToLower(s.InvoiceNumber), q)
	})

	params.Validate()
	start, end := params.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *saleRepository) newestFirst(keep func(*entity.Sale) bool) []entity.Sale {
	r.s.mu.RLock()
	out := make([]entity.Sale, 0)
	for i := range r.s.sales {
		if keep(&r.s.sales[i]) {
			out = append(out, copySale(r.s.sales[i]))
		}
	}
	r.s.mu.RUnlock()

	// Stable on insertion order so sales sharing a timestamp keep newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
