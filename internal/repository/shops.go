package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/domain"
)

func (r *Repository) GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	query := `SELECT id, name, owner_id FROM shops WHERE id = $1`

	var shop domain.Shop
	err := r.db.QueryRowContext(ctx, query, id).Scan(&shop.ID, &shop.Name, &shop.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shop by id: %w", err)
	}

	return &shop, nil
}

// AddSellerRevenue adds the settled amount to the shop's cumulative revenue,
// creating the stats row on first settlement.
func (r *Repository) AddSellerRevenue(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error {
	query := `INSERT INTO seller_stats (shop_id, total_revenue, last_updated)
	          VALUES ($1, $2, NOW())
	          ON CONFLICT (shop_id)
	          DO UPDATE SET total_revenue = seller_stats.total_revenue + EXCLUDED.total_revenue,
	                        last_updated = NOW()`

	if _, err := r.db.ExecContext(ctx, query, shopID, amount); err != nil {
		return fmt.Errorf("add seller revenue: %w", err)
	}
	return nil
}

func (r *Repository) GetSellerStats(ctx context.Context, shopID uuid.UUID) (*domain.SellerStats, error) {
	query := `SELECT shop_id, total_revenue, last_updated FROM seller_stats WHERE shop_id = $1`

	var stats domain.SellerStats
	err := r.db.QueryRowContext(ctx, query, shopID).Scan(&stats.ShopID, &stats.TotalRevenue, &stats.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SellerStats{ShopID: shopID, TotalRevenue: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query seller stats: %w", err)
	}

	return &stats, nil
}

// DecrementStock reduces an in-stock product's quantity by the ordered
// amount, flooring at zero, and flips availability off when stock runs out.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `UPDATE products
	          SET stock_quantity = GREATEST(stock_quantity - $2, 0),
	              in_stock = (stock_quantity - $2) > 0,
	              updated_at = NOW()
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProductNotFound
	}
	return nil
}
