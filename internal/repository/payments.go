package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/domain"
)

func (r *Repository) InsertPayment(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments (
	              id, order_id, shop_id, buyer_id, total_amount, seller_amount, platform_fee,
	              payment_method, payment_provider, status, processed_at, completed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.ShopID,
		payment.BuyerID,
		payment.TotalAmount,
		payment.SellerAmount,
		payment.PlatformFee,
		payment.Method,
		payment.Provider,
		payment.Status,
		payment.ProcessedAt,
		payment.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *Repository) InsertPlatformTransaction(ctx context.Context, txn *domain.PlatformTransaction) error {
	query := `INSERT INTO platform_transactions (id, order_id, shop_id, payment_id, amount, commission_rate, order_total, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.OrderID, txn.ShopID, txn.PaymentID, txn.Amount, txn.CommissionRate, txn.OrderTotal)
	if err != nil {
		return fmt.Errorf("insert platform transaction: %w", err)
	}
	return nil
}

func (r *Repository) InsertDistribution(ctx context.Context, dist *domain.PaymentDistribution) error {
	query := `INSERT INTO payment_distributions (id, order_id, shop_id, seller_amount, platform_fee, payout_ref, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		dist.ID, dist.OrderID, dist.ShopID, dist.SellerAmount, dist.PlatformFee, dist.PayoutRef)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDistribution
		}
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}

func (r *Repository) GetDistributionByOrder(ctx context.Context, orderID uuid.UUID) (*domain.PaymentDistribution, error) {
	query := `SELECT id, order_id, shop_id, seller_amount, platform_fee, payout_ref, created_at
	          FROM payment_distributions WHERE order_id = $1`

	var dist domain.PaymentDistribution
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&dist.ID,
		&dist.OrderID,
		&dist.ShopID,
		&dist.SellerAmount,
		&dist.PlatformFee,
		&dist.PayoutRef,
		&dist.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDistributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query distribution by order: %w", err)
	}

	return &dist, nil
}
