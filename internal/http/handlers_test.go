package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbarashe-m/musika/internal/checkout"
	"github.com/simbarashe-m/musika/internal/distribution"
	"github.com/simbarashe-m/musika/internal/domain"
)

type CartServiceMock struct {
	cart *domain.Cart
	err  error
}

func (m CartServiceMock) Get(context.Context, string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m CartServiceMock) AddItem(context.Context, string, domain.CartLine) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m CartServiceMock) SetQuantity(context.Context, string, uuid.UUID, int) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m CartServiceMock) RemoveItem(context.Context, string, uuid.UUID) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m CartServiceMock) Clear(context.Context, string) error {
	return m.err
}

func (m CartServiceMock) GroupedByShop(context.Context, string) ([]domain.ShopGroup, error) {
	if m.err != nil {
		return nil, m.err
	}
	return domain.GroupByShop(m.cart.Items), nil
}

type CheckoutServiceMock struct {
	result *checkout.CheckoutResult
	err    error

	gotMethod domain.PaymentMethod
	gotProof  *checkout.ProofImage
}

func (m *CheckoutServiceMock) ProcessCheckout(_ context.Context, _ string, _ []domain.CartLine, _ domain.OrderDetails, method domain.PaymentMethod, proof *checkout.ProofImage) (*checkout.CheckoutResult, error) {
	m.gotMethod = method
	m.gotProof = proof
	return m.result, m.err
}

type DistributorMock struct {
	result *distribution.Result
	err    error
}

func (m DistributorMock) Distribute(context.Context, uuid.UUID) (*distribution.Result, error) {
	return m.result, m.err
}

type OrderReaderMock struct {
	orders []domain.Order
	order  *domain.Order
	err    error
}

func (m OrderReaderMock) ListOrdersByBuyer(context.Context, string) ([]domain.Order, error) {
	return m.orders, m.err
}

func (m OrderReaderMock) GetOrder(context.Context, uuid.UUID) (*domain.Order, error) {
	return m.order, m.err
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func TestGetCart_Success(t *testing.T) {
	c := &domain.Cart{BuyerID: "buyer-1", TotalItems: 2}
	handler := NewCartHandler(CartServiceMock{cart: c}, 5*time.Second)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "buyer-1")
	rec := httptest.NewRecorder()
	handler.GetCart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "buyer-1", got.BuyerID)
	assert.Equal(t, 2, got.TotalItems)
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := NewCartHandler(CartServiceMock{}, 5*time.Second)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "")
	rec := httptest.NewRecorder()
	handler.GetCart(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddItem_Validation(t *testing.T) {
	handler := NewCartHandler(CartServiceMock{cart: &domain.Cart{}}, 5*time.Second)

	body := map[string]interface{}{
		"product_id": uuid.Nil,
		"shop_id":    uuid.New(),
		"quantity":   1,
	}
	b, _ := json.Marshal(body)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(b)), "buyer-1")
	rec := httptest.NewRecorder()
	handler.AddItem(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_Success(t *testing.T) {
	c := &domain.Cart{BuyerID: "buyer-1", TotalItems: 1}
	handler := NewCartHandler(CartServiceMock{cart: c}, 5*time.Second)

	body := AddItemRequestDTO{
		ProductID:   uuid.New(),
		ShopID:      uuid.New(),
		ProductName: "thing",
		Price:       decimal.NewFromInt(10),
		Quantity:    1,
		InStock:     true,
	}
	b, _ := json.Marshal(body)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(b)), "buyer-1")
	rec := httptest.NewRecorder()
	handler.AddItem(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProcessCheckout_Success(t *testing.T) {
	cartMock := CartServiceMock{cart: &domain.Cart{
		BuyerID: "buyer-1",
		Items:   []domain.CartLine{{ProductID: uuid.New(), ShopID: uuid.New(), Price: decimal.NewFromInt(10), Quantity: 1, InStock: true}},
	}}
	coMock := &CheckoutServiceMock{result: &checkout.CheckoutResult{Success: true, TotalAmount: decimal.NewFromInt(15)}}
	handler := NewCheckoutHandler(cartMock, coMock, DistributorMock{}, OrderReaderMock{}, 5*time.Second)

	body := CheckoutRequestDTO{
		PaymentMethod:   "cash",
		DeliveryAddress: "5 Main St",
		PhoneNumber:     "+263770000000",
		DeliveryZone:    "local",
	}
	b, _ := json.Marshal(body)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(b)), "buyer-1")
	rec := httptest.NewRecorder()
	handler.ProcessCheckout(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.MethodCash, coMock.gotMethod)
	assert.Nil(t, coMock.gotProof)
}

func TestProcessCheckout_ForwardsProofImage(t *testing.T) {
	cartMock := CartServiceMock{cart: &domain.Cart{BuyerID: "buyer-1"}}
	coMock := &CheckoutServiceMock{result: &checkout.CheckoutResult{Success: true}}
	handler := NewCheckoutHandler(cartMock, coMock, DistributorMock{}, OrderReaderMock{}, 5*time.Second)

	body := CheckoutRequestDTO{
		PaymentMethod:    "bank_transfer",
		DeliveryAddress:  "5 Main St",
		PhoneNumber:      "+263770000000",
		ProofImage:       []byte{1, 2, 3},
		ProofContentType: "image/jpeg",
	}
	b, _ := json.Marshal(body)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(b)), "buyer-1")
	rec := httptest.NewRecorder()
	handler.ProcessCheckout(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, coMock.gotProof)
	assert.Equal(t, "image/jpeg", coMock.gotProof.ContentType)
	assert.Equal(t, []byte{1, 2, 3}, coMock.gotProof.Data)
}

func TestProcessCheckout_UnsupportedMethod(t *testing.T) {
	cartMock := CartServiceMock{cart: &domain.Cart{BuyerID: "buyer-1"}}
	coMock := &CheckoutServiceMock{err: checkout.ErrUnsupportedPaymentMethod}
	handler := NewCheckoutHandler(cartMock, coMock, DistributorMock{}, OrderReaderMock{}, 5*time.Second)

	body := CheckoutRequestDTO{PaymentMethod: "paypal", DeliveryAddress: "x", PhoneNumber: "y"}
	b, _ := json.Marshal(body)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(b)), "buyer-1")
	rec := httptest.NewRecorder()
	handler.ProcessCheckout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributeOrder_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "already distributed", err: distribution.ErrAlreadyDistributed, want: http.StatusConflict},
		{name: "not delivered", err: distribution.ErrOrderNotDelivered, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckoutHandler(CartServiceMock{}, &CheckoutServiceMock{}, DistributorMock{err: tt.err}, OrderReaderMock{}, 5*time.Second)

			r := chi.NewRouter()
			r.Post("/api/v1/orders/{order_id}/distribute", handler.DistributeOrder)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/distribute", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDistributeOrder_Success(t *testing.T) {
	dist := &domain.PaymentDistribution{ID: uuid.New(), OrderID: uuid.New(), SellerAmount: decimal.NewFromInt(95)}
	handler := NewCheckoutHandler(CartServiceMock{}, &CheckoutServiceMock{},
		DistributorMock{result: &distribution.Result{Distribution: dist}}, OrderReaderMock{}, 5*time.Second)

	r := chi.NewRouter()
	r.Post("/api/v1/orders/{order_id}/distribute", handler.DistributeOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+dist.OrderID.String()+"/distribute", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.PaymentDistribution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, dist.ID, got.ID)
}

func TestGetOrder_HidesOtherBuyersOrders(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), BuyerID: "someone-else"}
	handler := NewCheckoutHandler(CartServiceMock{}, &CheckoutServiceMock{}, DistributorMock{},
		OrderReaderMock{order: order}, 5*time.Second)

	r := chi.NewRouter()
	r.Get("/api/v1/orders/{order_id}", handler.GetOrder)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil), "buyer-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
