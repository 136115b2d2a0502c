package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
)

type idempotencyRepository struct {
	s *Store
}

// NewIdempotencyRepository returns an idempotency key store backed by s.
func NewIdempotencyRepository(s *Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func idempotencyScope(key, userID, endpoint string) string {
	return userID + "\x00" + endpoint + "\x00" + key
}

func (r *idempotencyRepository) Get(ctx context.Context, key, userID, endpoint string) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ikey, ok := r.s.idempotency[idempotencyScope(key, userID, endpoint)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scope := idempotencyScope(ikey.Key, ikey.UserID, ikey.Endpoint)
	if _, exists := r.s.idempotency[scope]; exists {
		return nil
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = time.Now()
	r.s.idempotency[scope] = *ikey
	return nil
}

func (r *idempotencyRepository) Delete(ctx context.Context, key, userID, endpoint string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.idempotency, idempotencyScope(key, userID, endpoint))
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for scope, ikey := range r.s.idempotency {
		if ikey.IsExpired(now) {
			delete(r.s.idempotency, scope)
			removed++
		}
	}
	return removed, nil
}
