// Package memory provides mutex-guarded in-process implementations of the
// domain repositories. It backs the "memory" database driver and the
// service tests.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
)

// Store holds every table in maps. Readers always receive copies so callers
// cannot mutate stored rows.
type Store struct {
	mu          sync.RWMutex
	products    map[uuid.UUID]entity.Product
	sales       []entity.Sale // insertion order
	invoices    map[string]int
	settings    *entity.PharmacySettings
	idempotency map[string]entity.IdempotencyKey
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:    make(map[uuid.UUID]entity.Product),
		invoices:    make(map[string]int),
		idempotency: make(map[string]entity.IdempotencyKey),
	}
}

func copyProduct(p entity.Product) entity.Product {
	if p.TaxPercentage != nil {
		rate := *p.TaxPercentage
		p.TaxPercentage = &rate
	}
	return p
}

func copySale(s entity.Sale) entity.Sale {
	items := make([]entity.SaleItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}
