// Package checkout orchestrates the buyer-facing checkout flow: one order
// per shop in the cart, a payment capture per order, and the best-effort
// side effects around them (stock, shipping details, outbox, notifications).
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/domain"
)

// Store is the slice of the persistence gateway the checkout flow consumes.
// Each call commits independently; the flow relies on call ordering, not
// transactions.
type Store interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertOrderItems(ctx context.Context, items []domain.OrderItem) error
	InsertShippingDetails(ctx context.Context, details *domain.ShippingDetails) error
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	InsertPlatformTransaction(ctx context.Context, txn *domain.PlatformTransaction) error
	UpdateOrderPayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error
	AttachPaymentProof(ctx context.Context, id uuid.UUID, proofURL string, uploadedAt time.Time) error
	SaveProof(ctx context.Context, orderID uuid.UUID, contentType string, data []byte) (string, error)
}

// Gateway captures funds with the external payment provider.
type Gateway interface {
	Charge(ctx context.Context, orderID string, amount decimal.Decimal) (string, error)
}

// Notifier dispatches order-lifecycle notifications. Implementations must be
// fire-and-forget; the checkout flow never checks their outcome.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order, shop *domain.Shop)
	OrderConfirmed(ctx context.Context, order *domain.Order)
}

// CartClearer empties the buyer's cart once a checkout has produced orders.
type CartClearer interface {
	Clear(ctx context.Context, buyerID string) error
}

type Service struct {
	store       Store
	gateway     Gateway
	notifier    Notifier
	cart        CartClearer
	shippingFee decimal.Decimal
	logger      *slog.Logger
}

func NewService(store Store, gateway Gateway, notifier Notifier, cart CartClearer, shippingFee decimal.Decimal, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		gateway:     gateway,
		notifier:    notifier,
		cart:        cart,
		shippingFee: shippingFee,
		logger:      logger,
	}
}

// FailedOrder reports one shop whose order or payment step did not go
// through. Orders that were created but not charged stay on record as
// pending/unpaid; the buyer is told they were not charged.
type FailedOrder struct {
	ShopID   uuid.UUID `json:"shop_id"`
	ShopName string    `json:"shop_name"`
	Reason   string    `json:"reason"`
}

// CheckoutResult is the per-shop outcome of one checkout call. Success means
// at least one shop's order completed its payment step.
type CheckoutResult struct {
	Success              bool            `json:"success"`
	Orders               []domain.Order  `json:"orders"`
	FailedOrders         []FailedOrder   `json:"failed_orders,omitempty"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	RequiresPaymentProof bool            `json:"requires_payment_proof"`
}

// ProcessCheckout runs the whole flow for one buyer: validation, order
// creation per shop, payment capture per created order, cart clearing.
// Per-shop failures are reported in the result, not returned as errors;
// only up-front validation aborts the call.
func (s *Service) ProcessCheckout(
	ctx context.Context,
	buyerID string,
	lines []domain.CartLine,
	details domain.OrderDetails,
	method domain.PaymentMethod,
	proof *ProofImage,
) (*CheckoutResult, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	created, err := s.CreateOrders(ctx, buyerID, lines, details, method)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		TotalAmount:          decimal.Zero,
		RequiresPaymentProof: method.RequiresProof(),
	}
	for _, f := range created.FailedShops {
		result.FailedOrders = append(result.FailedOrders, FailedOrder{
			ShopID:   f.ShopID,
			ShopName: f.ShopName,
			Reason:   f.Err.Error(),
		})
	}

	for i := range created.CreatedOrders {
		order := &created.CreatedOrders[i]
		if _, err := s.ProcessPayment(ctx, order, method, proof); err != nil {
			s.logger.Error("payment step failed, order left unpaid",
				slog.String("order_id", order.ID.String()),
				slog.String("shop_id", order.ShopID.String()),
				slog.String("error", err.Error()))
			result.FailedOrders = append(result.FailedOrders, FailedOrder{
				ShopID: order.ShopID,
				Reason: fmt.Sprintf("payment failed, you were not charged: %v", err),
			})
			continue
		}
		result.Orders = append(result.Orders, *order)
		result.TotalAmount = result.TotalAmount.Add(order.TotalAmount)
	}

	result.Success = len(result.Orders) > 0
	if result.Success {
		if err := s.cart.Clear(ctx, buyerID); err != nil {
			s.logger.Warn("failed to clear cart after checkout",
				slog.String("buyer_id", buyerID),
				slog.String("error", err.Error()))
		}
	}

	return result, nil
}
