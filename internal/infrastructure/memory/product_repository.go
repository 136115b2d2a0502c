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
)

type productRepository struct {
	s *Store
}

// NewProductRepository returns a catalog store backed by s.
func NewProductRepository(s *Store) domainRepo.ProductRepository {
	return &productRepository{s: s}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[product.ID] = copyProduct(*product)
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[product.ID] = copyProduct(*product)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	search := strings.ToLower(params.Search)
	matched := r.filter(func(p *entity.Product) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.BrandName), search) {
			return false
		}
		if params.Category != "" && p.Category != params.Category {
			return false
		}
		if params.LowStockBelow > 0 && p.StockQuantity >= params.LowStockBelow {
			return false
		}
		return true
	})

	less := productLess(params.SortBy)
	desc := !strings.EqualFold(params.SortOrder, "asc")
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(&matched[j], &matched[i])
		}
		return less(&matched[i], &matched[j])
	})

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.products)), nil
}

func (r *productRepository) ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	out := r.filter(func(p *entity.Product) bool { return p.IsLowStock(threshold) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].StockQuantity < out[j].StockQuantity })
	return out, nil
}

func (r *productRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	out, _ := r.ListLowStock(ctx, threshold)
	return int64(len(out)), nil
}

func (r *productRepository) ListExpired(ctx context.Context, asOf time.Time) ([]entity.Product, error) {
	out := r.filter(func(p *entity.Product) bool { return p.IsExpired(asOf) })
	sortByExpiry(out)
	return out, nil
}

func (r *productRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]entity.Product, error) {
	out := r.filter(func(p *entity.Product) bool {
		return p.ExpiryDate.After(from) && !p.ExpiryDate.After(to)
	})
	sortByExpiry(out)
	return out, nil
}

func (r *productRepository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	out, _ := r.ListExpiringBetween(ctx, from, to)
	return int64(len(out)), nil
}

// DecrementStockIfAvailable checks and subtracts under the write lock.
func (r *productRepository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.StockQuantity < amount {
		return false, nil
	}
	p.StockQuantity -= amount
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return true, nil
}

func (r *productRepository) RestoreStock(ctx context.Context, id uuid.UUID, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	p.StockQuantity += amount
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return nil
}

func (r *productRepository) filter(keep func(*entity.Product) bool) []entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Product, 0)
	for _, p := range r.s.products {
		if keep(&p) {
			out = append(out, copyProduct(p))
		}
	}
	// Map iteration is random; fix a base order so equal sort keys are stable.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func sortByExpiry(products []entity.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ExpiryDate.Before(products[j].ExpiryDate)
	})
}

func productLess(sortBy string) func(a, b *entity.Product) bool {
	switch sortBy {
	case "name":
		return func(a, b *entity.Product) bool { return a.Name < b.Name }
	case "expiry_date":
		return func(a, b *entity.Product) bool { return a.ExpiryDate.Before(b.ExpiryDate) }
	case "stock_quantity":
		return func(a, b *entity.Product) bool { return a.StockQuantity < b.StockQuantity }
	case "selling_price":
		return func(a, b *entity.Product) bool { return a.SellingPrice.LessThan(b.SellingPrice) }
	default:
		return func(a, b *entity.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
