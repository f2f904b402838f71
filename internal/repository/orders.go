package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/domain"
)

func (r *Repository) InsertOrder(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (
	              id, buyer_id, shop_id, total_amount, status, payment_method, payment_status,
	              delivery_address, phone_number, delivery_zone, special_instructions,
	              delivery_fee, runner_fee, transport_fee, transport_fees_paid,
	              has_on_order_items, is_deposit_payment, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.BuyerID,
		order.ShopID,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.DeliveryAddress,
		order.PhoneNumber,
		order.DeliveryZone,
		order.SpecialInstructions,
		order.DeliveryFee,
		order.RunnerFee,
		order.TransportFee,
		order.TransportFeesPaid,
		order.HasOnOrderItems,
		order.IsDepositPayment,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertOrderItems writes all of an order's items in one statement, so the
// items either land together or not at all.
func (r *Repository) InsertOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, runner_fee, transport_fee, created_at) VALUES `)

	args := make([]interface{}, 0, len(items)*8)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.RunnerFee, item.TransportFee)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, buyer_id, shop_id, total_amount, status, payment_method, payment_status,
	                 delivery_address, phone_number, delivery_zone, special_instructions,
	                 delivery_fee, runner_fee, transport_fee, transport_fees_paid,
	                 has_on_order_items, is_deposit_payment,
	                 payment_proof_url, payment_proof_uploaded_at, created_at, updated_at
	          FROM orders WHERE id = $1`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.BuyerID,
		&order.ShopID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.DeliveryAddress,
		&order.PhoneNumber,
		&order.DeliveryZone,
		&order.SpecialInstructions,
		&order.DeliveryFee,
		&order.RunnerFee,
		&order.TransportFee,
		&order.TransportFeesPaid,
		&order.HasOnOrderItems,
		&order.IsDepositPayment,
		&order.PaymentProofURL,
		&order.PaymentProofUploadedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	return &order, nil
}

func (r *Repository) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, quantity, unit_price, runner_fee, transport_fee, created_at
	          FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.RunnerFee,
			&item.TransportFee,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	query := `SELECT id, buyer_id, shop_id, total_amount, status, payment_method, payment_status,
	                 delivery_address, phone_number, delivery_zone, special_instructions,
	                 delivery_fee, runner_fee, transport_fee, transport_fees_paid,
	                 has_on_order_items, is_deposit_payment,
	                 payment_proof_url, payment_proof_uploaded_at, created_at, updated_at
	          FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by buyer: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&order.ShopID,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentMethod,
			&order.PaymentStatus,
			&order.DeliveryAddress,
			&order.PhoneNumber,
			&order.DeliveryZone,
			&order.SpecialInstructions,
			&order.DeliveryFee,
			&order.RunnerFee,
			&order.TransportFee,
			&order.TransportFeesPaid,
			&order.HasOnOrderItems,
			&order.IsDepositPayment,
			&order.PaymentProofURL,
			&order.PaymentProofUploadedAt,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// UpdateOrderPayment advances an order's status pair after a payment step.
func (r *Repository) UpdateOrderPayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error {
	query := `UPDATE orders SET status = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) AttachPaymentProof(ctx context.Context, id uuid.UUID, proofURL string, uploadedAt time.Time) error {
	query := `UPDATE orders SET payment_proof_url = $2, payment_proof_uploaded_at = $3, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, proofURL, uploadedAt)
	if err != nil {
		return fmt.Errorf("attach payment proof: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) InsertShippingDetails(ctx context.Context, details *domain.ShippingDetails) error {
	query := `INSERT INTO shipping_details (id, order_id, address, phone_number, zone, instructions, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		details.ID, details.OrderID, details.Address, details.PhoneNumber, details.Zone, details.Instructions)
	if err != nil {
		return fmt.Errorf("insert shipping details: %w", err)
	}
	return nil
}
