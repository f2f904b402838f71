// Package http is the REST surface over the cart, checkout and distribution
// services.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/cart"
	"github.com/simbarashe-m/musika/internal/domain"
)

// CartService is the cart surface the handlers consume.
type CartService interface {
	Get(ctx context.Context, buyerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, buyerID string, line domain.CartLine) (*domain.Cart, error)
	SetQuantity(ctx context.Context, buyerID string, productID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, buyerID string, productID uuid.UUID) (*domain.Cart, error)
	Clear(ctx context.Context, buyerID string) error
	GroupedByShop(ctx context.Context, buyerID string) ([]domain.ShopGroup, error)
}

type CartHandler struct {
	cart    CartService
	timeout time.Duration
}

func NewCartHandler(cart CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{cart: cart, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID              uuid.UUID        `json:"product_id"`
	ShopID                 uuid.UUID        `json:"shop_id"`
	ProductName            string           `json:"product_name"`
	ShopName               string           `json:"shop_name"`
	Price                  decimal.Decimal  `json:"price"`
	Quantity               int              `json:"quantity"`
	InStock                bool             `json:"in_stock"`
	DeliveryFeeLocal       *decimal.Decimal `json:"delivery_fee_local,omitempty"`
	DeliveryFeeUptown      *decimal.Decimal `json:"delivery_fee_uptown,omitempty"`
	DeliveryFeeOutOfTown   *decimal.Decimal `json:"delivery_fee_outoftown,omitempty"`
	DeliveryFeeCountrywide *decimal.Decimal `json:"delivery_fee_countrywide,omitempty"`
	RunnerFee              *decimal.Decimal `json:"runner_fee,omitempty"`
	TransportFee           *decimal.Decimal `json:"transport_fee,omitempty"`
	FreeDeliveryThreshold  *decimal.Decimal `json:"free_delivery_threshold,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.cart.Get(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) GetGrouped(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	groups, err := h.cart.GroupedByShop(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to group cart")
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == uuid.Nil || req.ShopID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "invalid_product", "product_id and shop_id are required")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	line := domain.CartLine{
		ProductID:              req.ProductID,
		ShopID:                 req.ShopID,
		ProductName:            req.ProductName,
		ShopName:               req.ShopName,
		Price:                  req.Price,
		Quantity:               req.Quantity,
		InStock:                req.InStock,
		DeliveryFeeLocal:       req.DeliveryFeeLocal,
		DeliveryFeeUptown:      req.DeliveryFeeUptown,
		DeliveryFeeOutOfTown:   req.DeliveryFeeOutOfTown,
		DeliveryFeeCountrywide: req.DeliveryFeeCountrywide,
		RunnerFee:              req.RunnerFee,
		TransportFee:           req.TransportFee,
		FreeDeliveryThreshold:  req.FreeDeliveryThreshold,
	}

	c, err := h.cart.AddItem(ctx, userID, line)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.cart.SetQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	c, err := h.cart.RemoveItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.cart.Clear(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
