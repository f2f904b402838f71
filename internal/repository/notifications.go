package repository

import (
	"context"
	"fmt"

	"github.com/simbarashe-m/musika/internal/domain"
)

func (r *Repository) InsertNotification(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, user_id, type, message, order_id, shop_id, read, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Message, n.OrderID, n.ShopID, n.Read)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
