package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusPendingVerification OrderStatus = "pending_payment_verification"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

type OrderPaymentStatus string

const (
	PaymentStatusUnpaid         OrderPaymentStatus = "unpaid"
	PaymentStatusProofSubmitted OrderPaymentStatus = "proof_submitted"
	PaymentStatusPaid           OrderPaymentStatus = "paid"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodEWallet      PaymentMethod = "ewallet"
	MethodPayToCell    PaymentMethod = "pay_to_cell"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodEasyWallet   PaymentMethod = "easy_wallet"
)

// IsSupported reports whether the method is on the checkout allow-list.
func (m PaymentMethod) IsSupported() bool {
	switch m {
	case MethodCash, MethodEWallet, MethodPayToCell, MethodBankTransfer, MethodEasyWallet:
		return true
	}
	return false
}

// RequiresProof reports whether the method needs a proof-of-payment image
// before funds are considered settled. Only cash settles without one.
func (m PaymentMethod) RequiresProof() bool {
	return m != MethodCash
}

// Provider maps a payment method to its payment provider label.
func (m PaymentMethod) Provider() string {
	switch m {
	case MethodCash:
		return "cash_on_delivery"
	case MethodEWallet:
		return "ecocash"
	case MethodPayToCell:
		return "pay2cell"
	case MethodBankTransfer:
		return "bank"
	case MethodEasyWallet:
		return "easywallet"
	default:
		return string(m)
	}
}

// Order is one shop's slice of a checkout. A multi-shop cart yields one
// Order per shop. TotalAmount is fixed at creation; only payment-status
// transitions touch the row afterwards.
type Order struct {
	ID            uuid.UUID          `json:"id"`
	BuyerID       string             `json:"buyer_id"`
	ShopID        uuid.UUID          `json:"shop_id"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Status        OrderStatus        `json:"status"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	PaymentStatus OrderPaymentStatus `json:"payment_status"`

	DeliveryAddress     string       `json:"delivery_address"`
	PhoneNumber         string       `json:"phone_number"`
	DeliveryZone        DeliveryZone `json:"delivery_zone"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`

	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	RunnerFee         decimal.Decimal `json:"runner_fee"`
	TransportFee      decimal.Decimal `json:"transport_fee"`
	TransportFeesPaid bool            `json:"transport_fees_paid"`

	HasOnOrderItems  bool `json:"has_on_order_items"`
	IsDepositPayment bool `json:"is_deposit_payment"`

	PaymentProofURL        *string    `json:"payment_proof_url,omitempty"`
	PaymentProofUploadedAt *time.Time `json:"payment_proof_uploaded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem snapshots one cart line at order time. Unit price and fees are
// frozen here, independent of later product changes. Never mutated.
type OrderItem struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RunnerFee    decimal.Decimal `json:"runner_fee"`
	TransportFee decimal.Decimal `json:"transport_fee"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderDetails carries the buyer-supplied delivery information for a checkout.
type OrderDetails struct {
	DeliveryAddress     string       `json:"delivery_address"`
	PhoneNumber         string       `json:"phone_number"`
	DeliveryZone        DeliveryZone `json:"delivery_zone"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	IsDepositPayment    bool         `json:"is_deposit_payment"`
}

var (
	ErrMissingDeliveryAddress = errors.New("delivery address is required")
	ErrMissingPhoneNumber     = errors.New("phone number is required")
)

// Validate checks the required delivery fields and normalizes the zone.
func (d *OrderDetails) Validate() error {
	if d.DeliveryAddress == "" {
		return ErrMissingDeliveryAddress
	}
	if d.PhoneNumber == "" {
		return ErrMissingPhoneNumber
	}
	d.DeliveryZone = ParseZone(string(d.DeliveryZone))
	return nil
}

// ShippingDetails is the best-effort side record written per order with the
// delivery metadata a runner needs.
type ShippingDetails struct {
	ID           uuid.UUID    `json:"id"`
	OrderID      uuid.UUID    `json:"order_id"`
	Address      string       `json:"address"`
	PhoneNumber  string       `json:"phone_number"`
	Zone         DeliveryZone `json:"zone"`
	Instructions string       `json:"instructions,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
