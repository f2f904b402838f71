// Package distribution settles a delivered order: it releases the seller's
// share, books the platform's cut, and bumps the shop's cumulative revenue.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/domain"
	"github.com/simbarashe-m/musika/internal/repository"
)

var (
	ErrOrderNotDelivered  = errors.New("order is not delivered yet")
	ErrAlreadyDistributed = errors.New("order payment already distributed")
)

// Store is the slice of the persistence gateway distribution consumes.
type Store interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	GetDistributionByOrder(ctx context.Context, orderID uuid.UUID) (*domain.PaymentDistribution, error)
	InsertDistribution(ctx context.Context, dist *domain.PaymentDistribution) error
	AddSellerRevenue(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error
}

// Payer releases funds to a seller through the payment provider.
type Payer interface {
	Payout(ctx context.Context, shopID string, amount decimal.Decimal) (string, error)
}

// Notifier tells the seller their payout landed. Fire-and-forget.
type Notifier interface {
	PaymentDistributed(ctx context.Context, dist *domain.PaymentDistribution, shop *domain.Shop)
}

type Service struct {
	store    Store
	payer    Payer
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, payer Payer, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		payer:    payer,
		notifier: notifier,
		logger:   logger,
	}
}

type Result struct {
	Distribution *domain.PaymentDistribution
	Shop         *domain.Shop
	// RevenueErr is set when the seller_stats revenue bump failed after the
	// payout and distribution row were already committed. The settlement
	// stands; the caller decides whether to reconcile.
	RevenueErr error
}

// Distribute settles one delivered order. The split is recomputed from the
// order's stored total rather than read off the payment row. Calling it
// twice for the same order fails with ErrAlreadyDistributed; the unique
// constraint on the distribution table backs the check up under races.
func (s *Service) Distribute(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotDelivered, orderID, order.Status)
	}

	if _, err := s.store.GetDistributionByOrder(ctx, orderID); err == nil {
		return nil, ErrAlreadyDistributed
	} else if !errors.Is(err, repository.ErrDistributionNotFound) {
		return nil, fmt.Errorf("check existing distribution: %w", err)
	}

	shop, err := s.store.GetShop(ctx, order.ShopID)
	if err != nil {
		return nil, fmt.Errorf("load shop: %w", err)
	}

	platformFee, sellerAmount := domain.SplitTotal(order.TotalAmount)

	payoutRef, err := s.payer.Payout(ctx, shop.ID.String(), sellerAmount)
	if err != nil {
		return nil, fmt.Errorf("seller payout: %w", err)
	}
	s.logger.Info("seller payout released",
		slog.String("order_id", orderID.String()),
		slog.String("shop_id", shop.ID.String()),
		slog.String("seller_amount", sellerAmount.String()),
		slog.String("payout_ref", payoutRef))

	dist := &domain.PaymentDistribution{
		ID:           uuid.New(),
		OrderID:      orderID,
		ShopID:       shop.ID,
		SellerAmount: sellerAmount,
		PlatformFee:  platformFee,
		PayoutRef:    payoutRef,
	}
	if err := s.store.InsertDistribution(ctx, dist); err != nil {
		if errors.Is(err, repository.ErrDuplicateDistribution) {
			return nil, ErrAlreadyDistributed
		}
		return nil, fmt.Errorf("record distribution: %w", err)
	}

	var revenueErr error
	if err := s.store.AddSellerRevenue(ctx, shop.ID, sellerAmount); err != nil {
		revenueErr = fmt.Errorf("update seller revenue: %w", err)
		s.logger.Error("failed to update seller revenue",
			slog.String("shop_id", shop.ID.String()),
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()))
	}

	s.notifier.PaymentDistributed(ctx, dist, shop)

	return &Result{Distribution: dist, Shop: shop, RevenueErr: revenueErr}, nil
}
