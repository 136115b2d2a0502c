package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// Get returns nil, nil when the key was never stored for this user and endpoint.
	Get(ctx context.Context, key, userID, endpoint string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Delete removes the key stored for this user and endpoint, if any.
	Delete(ctx context.Context, key, userID, endpoint string) error
	// DeleteExpired removes keys that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
