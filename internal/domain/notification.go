package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewOrder        NotificationType = "new_order"
	NotificationOrderConfirmed  NotificationType = "order_confirmed"
	NotificationPaymentReceived NotificationType = "payment_received"
)

// Notification is a best-effort side record tied to order lifecycle events.
// Losing one never affects the order or payment flow.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	OrderID   *uuid.UUID       `json:"order_id,omitempty"`
	ShopID    *uuid.UUID       `json:"shop_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
