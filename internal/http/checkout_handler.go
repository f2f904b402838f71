package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/checkout"
	"github.com/simbarashe-m/musika/internal/distribution"
	"github.com/simbarashe-m/musika/internal/domain"
	"github.com/simbarashe-m/musika/internal/repository"
)

// CheckoutService runs the checkout flow.
type CheckoutService interface {
	ProcessCheckout(ctx context.Context, buyerID string, lines []domain.CartLine, details domain.OrderDetails, method domain.PaymentMethod, proof *checkout.ProofImage) (*checkout.CheckoutResult, error)
}

// Distributor settles delivered orders.
type Distributor interface {
	Distribute(ctx context.Context, orderID uuid.UUID) (*distribution.Result, error)
}

// OrderReader lists and loads orders for the buyer-facing endpoints.
type OrderReader interface {
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type CheckoutHandler struct {
	cart        CartService
	checkout    CheckoutService
	distributor Distributor
	orders      OrderReader
	timeout     time.Duration
}

func NewCheckoutHandler(cart CartService, co CheckoutService, distributor Distributor, orders OrderReader, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		cart:        cart,
		checkout:    co,
		distributor: distributor,
		orders:      orders,
		timeout:     timeout,
	}
}

type CheckoutRequestDTO struct {
	PaymentMethod       string `json:"payment_method"`
	DeliveryAddress     string `json:"delivery_address"`
	PhoneNumber         string `json:"phone_number"`
	DeliveryZone        string `json:"delivery_zone"`
	SpecialInstructions string `json:"special_instructions"`
	IsDepositPayment    bool   `json:"is_deposit_payment"`
	// base64 via encoding/json's []byte handling
	ProofImage       []byte `json:"proof_image,omitempty"`
	ProofContentType string `json:"proof_content_type,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) ProcessCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.cart.Get(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	details := domain.OrderDetails{
		DeliveryAddress:     req.DeliveryAddress,
		PhoneNumber:         req.PhoneNumber,
		DeliveryZone:        domain.ParseZone(req.DeliveryZone),
		SpecialInstructions: req.SpecialInstructions,
		IsDepositPayment:    req.IsDepositPayment,
	}

	var proof *checkout.ProofImage
	if len(req.ProofImage) > 0 {
		proof = &checkout.ProofImage{ContentType: req.ProofContentType, Data: req.ProofImage}
	}

	result, err := h.checkout.ProcessCheckout(ctx, userID, c.Items, details, domain.PaymentMethod(req.PaymentMethod), proof)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnsupportedPaymentMethod):
			respondError(w, http.StatusBadRequest, "unsupported_payment_method", err.Error())
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
		case errors.Is(err, domain.ErrMissingDeliveryAddress), errors.Is(err, domain.ErrMissingPhoneNumber):
			respondError(w, http.StatusBadRequest, "invalid_details", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// GET /api/v1/orders
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrdersByBuyer(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}
	if order.BuyerID != userID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// POST /api/v1/orders/{order_id}/distribute
func (h *CheckoutHandler) DistributeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	result, err := h.distributor.Distribute(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, distribution.ErrAlreadyDistributed):
			respondError(w, http.StatusConflict, "already_distributed", err.Error())
		case errors.Is(err, distribution.ErrOrderNotDelivered):
			respondError(w, http.StatusConflict, "order_not_delivered", err.Error())
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "not_found", "order not found")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "distribution failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, result.Distribution)
}
