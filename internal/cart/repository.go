package cart

import (
	"context"
	"errors"

	"github.com/simbarashe-m/musika/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository is the durable cart store, keyed by buyer. Carts survive
// process restarts; the cache in front of it is only an optimization.
type Repository interface {
	Get(ctx context.Context, buyerID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, buyerID string) error
}
