package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbarashe-m/musika/internal/domain"
)

func validDetails() domain.OrderDetails {
	return domain.OrderDetails{
		DeliveryAddress: "5 Main St",
		PhoneNumber:     "+263770000000",
		DeliveryZone:    domain.ZoneLocal,
	}
}

func TestCreateOrders_RejectsUnknownMethodBeforeAnyWrite(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	lines := []domain.CartLine{inStockLine(uuid.New(), 100, 1)}
	_, err := svc.CreateOrders(context.Background(), "buyer-1", lines, validDetails(), "paypal")

	assert.ErrorIs(t, err, ErrUnsupportedPaymentMethod)
	assert.Empty(t, store.Orders)
	assert.Empty(t, store.Items)
	assert.Empty(t, store.Payments)
}

func TestCreateOrders_EmptyCart(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	_, err := svc.CreateOrders(context.Background(), "buyer-1", nil, validDetails(), domain.MethodCash)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrders_OneOrderPerShop(t *testing.T) {
	store := NewMockStore()
	notifier := &MockNotifier{}
	svc := newTestService(store, &MockGateway{}, notifier, &MockCart{})

	shopA, shopB := uuid.New(), uuid.New()
	lines := []domain.CartLine{
		inStockLine(shopA, 100, 2),
		inStockLine(shopB, 50, 1),
		inStockLine(shopA, 10, 3),
	}

	result, err := svc.CreateOrders(context.Background(), "buyer-1", lines, validDetails(), domain.MethodCash)
	require.NoError(t, err)
	require.Len(t, result.CreatedOrders, 2)
	assert.Empty(t, result.FailedShops)

	first := result.CreatedOrders[0]
	assert.Equal(t, shopA, first.ShopID)
	assert.Equal(t, domain.OrderStatusPending, first.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, first.PaymentStatus)
	// 100*2 + 10*3 + shipping 5
	assert.True(t, first.TotalAmount.Equal(decimal.NewFromInt(235)), "got %s", first.TotalAmount)

	require.Len(t, store.Items, 2)
	assert.Len(t, store.Items[0], 2)
	assert.Len(t, store.Items[1], 1)

	// side effects ran per shop
	assert.Len(t, store.Shipping, 2)
	assert.Equal(t, []string{"order.created", "order.created"}, store.OutboxEvents)
	assert.Len(t, notifier.Created, 2)
}

func TestCreateOrders_PartialFailureIsolation(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	shopA, shopB := uuid.New(), uuid.New()
	store.FailOrderForShop = shopB

	lines := []domain.CartLine{
		inStockLine(shopA, 100, 1),
		inStockLine(shopB, 40, 2),
	}

	result, err := svc.CreateOrders(context.Background(), "buyer-1", lines, validDetails(), domain.MethodCash)
	require.NoError(t, err)

	require.Len(t, result.CreatedOrders, 1)
	assert.Equal(t, shopA, result.CreatedOrders[0].ShopID)

	require.Len(t, result.FailedShops, 1)
	assert.Equal(t, shopB, result.FailedShops[0].ShopID)
	assert.ErrorIs(t, result.FailedShops[0].Err, errInjected)
}

func TestCreateOrders_ItemsInsertFailureFailsTheShop(t *testing.T) {
	store := NewMockStore()
	store.ItemsErr = errInjected
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	lines := []domain.CartLine{inStockLine(uuid.New(), 100, 1)}
	result, err := svc.CreateOrders(context.Background(), "buyer-1", lines, validDetails(), domain.MethodCash)
	require.NoError(t, err)

	assert.Empty(t, result.CreatedOrders)
	require.Len(t, result.FailedShops, 1)
	// the orphaned order row is acknowledged, not rolled back
	assert.Len(t, store.Orders, 1)
}

func TestCreateOrders_StockDecrementOnlyForInStockLines(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	shopID := uuid.New()
	stocked := inStockLine(shopID, 100, 2)
	fee := decimal.NewFromInt(20)
	onOrder := domain.CartLine{
		ProductID:        uuid.New(),
		ShopID:           shopID,
		ProductName:      "imported amp",
		ShopName:         "shop",
		Price:            decimal.NewFromInt(300),
		Quantity:         1,
		InStock:          false,
		DeliveryFeeLocal: &fee,
	}

	result, err := svc.CreateOrders(context.Background(), "buyer-1",
		[]domain.CartLine{stocked, onOrder}, validDetails(), domain.MethodCash)
	require.NoError(t, err)
	require.Len(t, result.CreatedOrders, 1)

	assert.Equal(t, 2, store.StockDecrement[stocked.ProductID])
	_, touched := store.StockDecrement[onOrder.ProductID]
	assert.False(t, touched)

	order := result.CreatedOrders[0]
	assert.True(t, order.HasOnOrderItems)
	assert.False(t, order.IsDepositPayment)
	assert.True(t, order.DeliveryFee.Equal(fee))
}

func TestCreateOrders_DepositOnlyWithOnOrderItems(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	details := validDetails()
	details.IsDepositPayment = true

	lines := []domain.CartLine{inStockLine(uuid.New(), 100, 1)}
	result, err := svc.CreateOrders(context.Background(), "buyer-1", lines, details, domain.MethodCash)
	require.NoError(t, err)
	require.Len(t, result.CreatedOrders, 1)

	// nothing on order, so the deposit request has no effect
	assert.False(t, result.CreatedOrders[0].IsDepositPayment)
	assert.True(t, result.CreatedOrders[0].TotalAmount.Equal(decimal.NewFromInt(105)))
}

func TestCreateOrders_SideEffectFailuresDoNotFailTheOrder(t *testing.T) {
	store := NewMockStore()
	store.StockErr = errInjected
	store.ShippingErr = errInjected
	store.OutboxErr = errInjected
	store.GetShopErr = errInjected
	svc := newTestService(store, &MockGateway{}, &MockNotifier{}, &MockCart{})

	lines := []domain.CartLine{inStockLine(uuid.New(), 100, 1)}
	result, err := svc.CreateOrders(context.Background(), "buyer-1", lines, validDetails(), domain.MethodCash)
	require.NoError(t, err)
	assert.Len(t, result.CreatedOrders, 1)
	assert.Empty(t, result.FailedShops)
}
