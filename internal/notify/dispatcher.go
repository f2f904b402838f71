// Package notify writes order-lifecycle notifications. Delivery is best
// effort: a failed insert is logged and dropped, never surfaced to the
// checkout or distribution flow.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/domain"
)

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *domain.Notification) error
}

type Dispatcher struct {
	store  NotificationStore
	logger *slog.Logger
}

func NewDispatcher(store NotificationStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// OrderCreated tells the shop owner a new order landed. Wording depends on
// the method: cash is collected on delivery, everything else waits on proof
// verification.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *domain.Order, shop *domain.Shop) {
	var msg string
	if order.PaymentMethod.RequiresProof() {
		msg = fmt.Sprintf("New order from %s for %s, payment proof pending verification", order.BuyerID, order.TotalAmount.StringFixed(2))
	} else {
		msg = fmt.Sprintf("New order from %s for %s, payable in cash on delivery", order.BuyerID, order.TotalAmount.StringFixed(2))
	}
	d.insert(ctx, &domain.Notification{
		ID:      uuid.New(),
		UserID:  shop.OwnerID,
		Type:    domain.NotificationNewOrder,
		Message: msg,
		OrderID: &order.ID,
		ShopID:  &shop.ID,
	})
}

// OrderConfirmed tells the buyer their payment step went through. Wording
// depends on the method: cash settles on delivery, everything else waits on
// proof verification.
func (d *Dispatcher) OrderConfirmed(ctx context.Context, order *domain.Order) {
	var msg string
	if order.PaymentMethod.RequiresProof() {
		msg = fmt.Sprintf("Order %s confirmed. We will verify your payment proof shortly.", order.ID)
	} else {
		msg = fmt.Sprintf("Order %s confirmed. Pay %s in cash on delivery.", order.ID, order.TotalAmount.StringFixed(2))
	}
	d.insert(ctx, &domain.Notification{
		ID:      uuid.New(),
		UserID:  order.BuyerID,
		Type:    domain.NotificationOrderConfirmed,
		Message: msg,
		OrderID: &order.ID,
		ShopID:  &order.ShopID,
	})
}

// PaymentDistributed tells the shop owner their payout for a delivered order
// has been released.
func (d *Dispatcher) PaymentDistributed(ctx context.Context, dist *domain.PaymentDistribution, shop *domain.Shop) {
	msg := fmt.Sprintf("Payment of %s released for order %s", dist.SellerAmount.StringFixed(2), dist.OrderID)
	d.insert(ctx, &domain.Notification{
		ID:      uuid.New(),
		UserID:  shop.OwnerID,
		Type:    domain.NotificationPaymentReceived,
		Message: msg,
		OrderID: &dist.OrderID,
		ShopID:  &shop.ID,
	})
}

func (d *Dispatcher) insert(ctx context.Context, n *domain.Notification) {
	if err := d.store.InsertNotification(ctx, n); err != nil {
		d.logger.Warn("failed to write notification",
			slog.String("type", string(n.Type)),
			slog.String("user_id", n.UserID),
			slog.String("error", err.Error()))
	}
}
