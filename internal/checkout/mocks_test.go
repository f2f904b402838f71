package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/domain"
)

var errInjected = errors.New("injected failure")

// MockStore implements Store for testing. Writes are captured; individual
// calls can be forced to fail.
type MockStore struct {
	Orders         []*domain.Order
	Items          [][]domain.OrderItem
	Shipping       []*domain.ShippingDetails
	Payments       []*domain.Payment
	Transactions   []*domain.PlatformTransaction
	OutboxEvents   []string
	StockDecrement map[uuid.UUID]int
	StatusUpdates  map[uuid.UUID][2]string
	ProofURLs      map[uuid.UUID]string

	Shops map[uuid.UUID]*domain.Shop

	FailOrderForShop uuid.UUID
	OrderErr         error
	ItemsErr         error
	PaymentErr       error
	TransactionErr   error
	StatusErr        error
	SaveProofErr     error
	StockErr         error
	ShippingErr      error
	OutboxErr        error
	GetShopErr       error
	AttachProofErr   error
}

func NewMockStore() *MockStore {
	return &MockStore{
		StockDecrement: make(map[uuid.UUID]int),
		StatusUpdates:  make(map[uuid.UUID][2]string),
		ProofURLs:      make(map[uuid.UUID]string),
		Shops:          make(map[uuid.UUID]*domain.Shop),
	}
}

func (m *MockStore) InsertOrder(_ context.Context, order *domain.Order) error {
	if m.OrderErr != nil {
		return m.OrderErr
	}
	if m.FailOrderForShop != uuid.Nil && order.ShopID == m.FailOrderForShop {
		return errInjected
	}
	m.Orders = append(m.Orders, order)
	return nil
}

func (m *MockStore) InsertOrderItems(_ context.Context, items []domain.OrderItem) error {
	if m.ItemsErr != nil {
		return m.ItemsErr
	}
	m.Items = append(m.Items, items)
	return nil
}

func (m *MockStore) InsertShippingDetails(_ context.Context, details *domain.ShippingDetails) error {
	if m.ShippingErr != nil {
		return m.ShippingErr
	}
	m.Shipping = append(m.Shipping, details)
	return nil
}

func (m *MockStore) DecrementStock(_ context.Context, productID uuid.UUID, quantity int) error {
	if m.StockErr != nil {
		return m.StockErr
	}
	m.StockDecrement[productID] += quantity
	return nil
}

func (m *MockStore) InsertOutboxEvent(_ context.Context, _ string, eventType string, _ []byte) error {
	if m.OutboxErr != nil {
		return m.OutboxErr
	}
	m.OutboxEvents = append(m.OutboxEvents, eventType)
	return nil
}

func (m *MockStore) GetShop(_ context.Context, id uuid.UUID) (*domain.Shop, error) {
	if m.GetShopErr != nil {
		return nil, m.GetShopErr
	}
	if shop, ok := m.Shops[id]; ok {
		return shop, nil
	}
	return &domain.Shop{ID: id, Name: "shop", OwnerID: "owner-" + id.String()}, nil
}

func (m *MockStore) InsertPayment(_ context.Context, payment *domain.Payment) error {
	if m.PaymentErr != nil {
		return m.PaymentErr
	}
	m.Payments = append(m.Payments, payment)
	return nil
}

func (m *MockStore) InsertPlatformTransaction(_ context.Context, txn *domain.PlatformTransaction) error {
	if m.TransactionErr != nil {
		return m.TransactionErr
	}
	m.Transactions = append(m.Transactions, txn)
	return nil
}

func (m *MockStore) UpdateOrderPayment(_ context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus domain.OrderPaymentStatus) error {
	if m.StatusErr != nil {
		return m.StatusErr
	}
	m.StatusUpdates[id] = [2]string{string(status), string(paymentStatus)}
	return nil
}

func (m *MockStore) AttachPaymentProof(_ context.Context, id uuid.UUID, proofURL string, _ time.Time) error {
	if m.AttachProofErr != nil {
		return m.AttachProofErr
	}
	m.ProofURLs[id] = proofURL
	return nil
}

func (m *MockStore) SaveProof(_ context.Context, orderID uuid.UUID, _ string, _ []byte) (string, error) {
	if m.SaveProofErr != nil {
		return "", m.SaveProofErr
	}
	return "/storage/payment-proofs/" + orderID.String(), nil
}

// MockGateway implements Gateway for testing.
type MockGateway struct {
	Err     error
	Charges int
}

func (m *MockGateway) Charge(_ context.Context, _ string, _ decimal.Decimal) (string, error) {
	m.Charges++
	if m.Err != nil {
		return "", m.Err
	}
	return "TXN-test", nil
}

// MockNotifier implements Notifier for testing.
type MockNotifier struct {
	Created   []*domain.Order
	Confirmed []*domain.Order
}

func (m *MockNotifier) OrderCreated(_ context.Context, order *domain.Order, _ *domain.Shop) {
	m.Created = append(m.Created, order)
}

func (m *MockNotifier) OrderConfirmed(_ context.Context, order *domain.Order) {
	m.Confirmed = append(m.Confirmed, order)
}

// MockCart implements CartClearer for testing.
type MockCart struct {
	Cleared []string
	Err     error
}

func (m *MockCart) Clear(_ context.Context, buyerID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Cleared = append(m.Cleared, buyerID)
	return nil
}

func newTestService(store *MockStore, gateway *MockGateway, notifier *MockNotifier, cart *MockCart) *Service {
	return NewService(store, gateway, notifier, cart, decimal.NewFromInt(5), slog.New(slog.DiscardHandler))
}

func inStockLine(shopID uuid.UUID, price int64, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID:   uuid.New(),
		ShopID:      shopID,
		ProductName: "product",
		ShopName:    "shop",
		Price:       decimal.NewFromInt(price),
		Quantity:    qty,
		InStock:     true,
	}
}
