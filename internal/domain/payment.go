package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRate is the marketplace's fixed cut of every order total.
var CommissionRate = decimal.New(5, -2) // 0.05

// SplitTotal derives the platform fee and seller amount from an order total.
// Both checkout-time capture and post-delivery distribution use this one
// formula so the two computations cannot drift.
func SplitTotal(total decimal.Decimal) (platformFee, sellerAmount decimal.Decimal) {
	platformFee = total.Mul(CommissionRate)
	sellerAmount = total.Sub(platformFee)
	return platformFee, sellerAmount
}

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentCompleted PaymentState = "completed"
)

// Payment records a capture attempt for one order. Created once per order;
// status only ever moves pending -> completed.
type Payment struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ShopID       uuid.UUID       `json:"shop_id"`
	BuyerID      string          `json:"buyer_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	Method       PaymentMethod   `json:"payment_method"`
	Provider     string          `json:"payment_provider"`
	Status       PaymentState    `json:"status"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PlatformTransaction is the commission record written when a payment
// reaches completed. Amount always equals the payment's platform fee.
type PlatformTransaction struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	ShopID         uuid.UUID       `json:"shop_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	OrderTotal     decimal.Decimal `json:"order_total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PaymentDistribution records the post-delivery settlement of one order's
// seller payout. At most one row per order.
type PaymentDistribution struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ShopID       uuid.UUID       `json:"shop_id"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	PayoutRef    string          `json:"payout_ref"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Shop is the read-only seller entity referenced by orders and payouts.
type Shop struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID string    `json:"owner_id"`
}

// SellerStats is the cumulative revenue aggregate for one shop, mutated
// additively by payment distribution only.
type SellerStats struct {
	ShopID       uuid.UUID       `json:"shop_id"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	LastUpdated  time.Time       `json:"last_updated"`
}
