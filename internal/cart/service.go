package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/simbarashe-m/musika/internal/domain"
)

var ErrItemNotFound = errors.New("item not found in cart")

// Service is the cart aggregate: every mutation loads the buyer's cart from
// the durable store, applies the change, recomputes totals through the one
// shared path, and writes the whole cart back.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
	sfg    singleflight.Group // collapses concurrent reads for the same buyer
}

func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Get returns the buyer's cart, consulting the cache first. A buyer with no
// stored cart gets an empty cart, not an error.
func (s *Service) Get(ctx context.Context, buyerID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(buyerID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, buyerID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", "buyer_id", buyerID, "error", err)
		}

		cart, err := s.repo.Get(ctx, buyerID)
		if errors.Is(err, ErrCartNotFound) {
			return emptyCart(buyerID), nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, buyerID, cart); err != nil {
				s.logger.Warn("cart cache set failed", "buyer_id", buyerID, "error", err)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem appends a line, or increments quantity when the product is already
// in the cart. A non-positive quantity defaults to 1.
func (s *Service) AddItem(ctx context.Context, buyerID string, line domain.CartLine) (*domain.Cart, error) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}

	return s.mutate(ctx, buyerID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == line.ProductID {
				cart.Items[i].Quantity += line.Quantity
				return nil
			}
		}
		cart.Items = append(cart.Items, line)
		return nil
	})
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
func (s *Service) SetQuantity(ctx context.Context, buyerID string, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, buyerID, productID)
	}

	return s.mutate(ctx, buyerID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
		return ErrItemNotFound
	})
}

func (s *Service) RemoveItem(ctx context.Context, buyerID string, productID uuid.UUID) (*domain.Cart, error) {
	return s.mutate(ctx, buyerID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// Clear drops the buyer's cart entirely.
func (s *Service) Clear(ctx context.Context, buyerID string) error {
	if err := s.repo.Delete(ctx, buyerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.invalidate(buyerID)
	return nil
}

// GroupedByShop partitions the cart by owning shop. Every line appears in
// exactly one group; group subtotals sum the group's extended prices.
func (s *Service) GroupedByShop(ctx context.Context, buyerID string) ([]domain.ShopGroup, error) {
	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return domain.GroupByShop(cart.Items), nil
}

func (s *Service) mutate(ctx context.Context, buyerID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, buyerID)
	if errors.Is(err, ErrCartNotFound) {
		cart = emptyCart(buyerID)
	} else if err != nil {
		return nil, err
	}

	if err := apply(cart); err != nil {
		return nil, err
	}
	cart.RecalcTotals()

	if err := s.repo.Upsert(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidate(buyerID)
	return cart, nil
}

func (s *Service) invalidate(buyerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, buyerID); err != nil {
		s.logger.Warn("cart cache invalidate failed", "buyer_id", buyerID, "error", err)
	}
}

func emptyCart(buyerID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		BuyerID:   buyerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
