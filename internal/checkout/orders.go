package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/domain"
	"github.com/simbarashe-m/musika/internal/fees"
)

// FailedShop records one shop whose order could not be created. Sibling
// shops in the same checkout are unaffected.
type FailedShop struct {
	ShopID   uuid.UUID
	ShopName string
	Err      error
}

type CreateOrdersResult struct {
	CreatedOrders []domain.Order
	FailedShops   []FailedShop
}

// CreateOrders partitions the cart by shop and creates one order per shop.
// The payment method is validated before anything is written. Each shop is
// processed independently; one shop's failure lands in FailedShops and the
// rest proceed.
func (s *Service) CreateOrders(
	ctx context.Context,
	buyerID string,
	lines []domain.CartLine,
	details domain.OrderDetails,
	method domain.PaymentMethod,
) (*CreateOrdersResult, error) {
	if !method.IsSupported() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, method)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	result := &CreateOrdersResult{}
	for _, group := range domain.GroupByShop(lines) {
		order, err := s.createShopOrder(ctx, buyerID, group, details, method)
		if err != nil {
			s.logger.Error("order creation failed for shop",
				slog.String("shop_id", group.ShopID.String()),
				slog.String("buyer_id", buyerID),
				slog.String("error", err.Error()))
			result.FailedShops = append(result.FailedShops, FailedShop{
				ShopID:   group.ShopID,
				ShopName: group.ShopName,
				Err:      err,
			})
			continue
		}
		result.CreatedOrders = append(result.CreatedOrders, *order)
	}

	return result, nil
}

func (s *Service) createShopOrder(
	ctx context.Context,
	buyerID string,
	group domain.ShopGroup,
	details domain.OrderDetails,
	method domain.PaymentMethod,
) (*domain.Order, error) {
	hasOnOrder := false
	for _, line := range group.Items {
		if !line.InStock {
			hasOnOrder = true
			break
		}
	}
	deposit := hasOnOrder && details.IsDepositPayment

	breakdown := fees.Calculate(group.Items, details.DeliveryZone, deposit, s.shippingFee)

	order := &domain.Order{
		ID:                  uuid.New(),
		BuyerID:             buyerID,
		ShopID:              group.ShopID,
		TotalAmount:         breakdown.Total,
		Status:              domain.OrderStatusPending,
		PaymentMethod:       method,
		PaymentStatus:       domain.PaymentStatusUnpaid,
		DeliveryAddress:     details.DeliveryAddress,
		PhoneNumber:         details.PhoneNumber,
		DeliveryZone:        details.DeliveryZone,
		SpecialInstructions: details.SpecialInstructions,
		DeliveryFee:         breakdown.DeliveryFeesTotal,
		RunnerFee:           breakdown.RunnerFeesTotal,
		TransportFee:        breakdown.TransportFeesTotal,
		HasOnOrderItems:     hasOnOrder,
		IsDepositPayment:    deposit,
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order for shop %s: %w", group.ShopID, err)
	}

	items := make([]domain.OrderItem, 0, len(group.Items))
	for _, line := range group.Items {
		item := domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
		}
		if line.RunnerFee != nil {
			item.RunnerFee = *line.RunnerFee
		}
		if line.TransportFee != nil {
			item.TransportFee = *line.TransportFee
		}
		items = append(items, item)
	}
	if err := s.store.InsertOrderItems(ctx, items); err != nil {
		// the order row is already durable with no items under it; no
		// rollback is available, so flag the orphan loudly
		s.logger.Error("order exists without items",
			slog.String("order_id", order.ID.String()),
			slog.String("shop_id", group.ShopID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("insert items for order %s: %w", order.ID, err)
	}

	s.applyOrderSideEffects(ctx, order, group)

	return order, nil
}

// applyOrderSideEffects runs the non-load-bearing steps after an order and
// its items are durable. Every failure here is logged and dropped.
func (s *Service) applyOrderSideEffects(ctx context.Context, order *domain.Order, group domain.ShopGroup) {
	for _, line := range group.Items {
		if !line.InStock {
			continue
		}
		if err := s.store.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.Warn("failed to decrement stock",
				slog.String("product_id", line.ProductID.String()),
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	shipping := &domain.ShippingDetails{
		ID:           uuid.New(),
		OrderID:      order.ID,
		Address:      order.DeliveryAddress,
		PhoneNumber:  order.PhoneNumber,
		Zone:         order.DeliveryZone,
		Instructions: order.SpecialInstructions,
	}
	if err := s.store.InsertShippingDetails(ctx, shipping); err != nil {
		s.logger.Warn("failed to write shipping details",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}

	s.publishOrderEvent(ctx, order, "order.created")

	shop, err := s.store.GetShop(ctx, order.ShopID)
	if err != nil {
		s.logger.Warn("failed to load shop for notification",
			slog.String("shop_id", order.ShopID.String()),
			slog.String("error", err.Error()))
		return
	}
	s.notifier.OrderCreated(ctx, order, shop)
}

func (s *Service) publishOrderEvent(ctx context.Context, order *domain.Order, eventType string) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"buyer_id":       order.BuyerID,
		"shop_id":        order.ShopID,
		"total_amount":   order.TotalAmount,
		"payment_method": order.PaymentMethod,
		"occurred_at":    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to marshal order event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := s.store.InsertOutboxEvent(ctx, order.ID.String(), eventType, payload); err != nil {
		s.logger.Warn("failed to write outbox event",
			slog.String("order_id", order.ID.String()),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
