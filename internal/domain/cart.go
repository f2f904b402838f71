package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product entry in a buyer's cart. Optional fee fields are
// pointers: products without a configured fee leave them nil, and nil always
// counts as zero when summing.
type CartLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ShopID      uuid.UUID `json:"shop_id"`
	ShopName    string    `json:"shop_name"`

	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	InStock  bool            `json:"in_stock"`

	DeliveryFeeLocal       *decimal.Decimal `json:"delivery_fee_local,omitempty"`
	DeliveryFeeUptown      *decimal.Decimal `json:"delivery_fee_uptown,omitempty"`
	DeliveryFeeOutOfTown   *decimal.Decimal `json:"delivery_fee_outoftown,omitempty"`
	DeliveryFeeCountrywide *decimal.Decimal `json:"delivery_fee_countrywide,omitempty"`
	RunnerFee              *decimal.Decimal `json:"runner_fee,omitempty"`
	TransportFee           *decimal.Decimal `json:"transport_fee,omitempty"`
	FreeDeliveryThreshold  *decimal.Decimal `json:"free_delivery_threshold,omitempty"`

	AddedAt time.Time `json:"added_at"`
}

// Extended is the line's extended price: unit price times quantity.
func (l CartLine) Extended() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DeliveryFeeFor selects the fee field matching the delivery zone.
// Missing fees count as zero.
func (l CartLine) DeliveryFeeFor(zone DeliveryZone) decimal.Decimal {
	switch zone {
	case ZoneUptown:
		return amountOrZero(l.DeliveryFeeUptown)
	case ZoneOutOfTown:
		return amountOrZero(l.DeliveryFeeOutOfTown)
	case ZoneCountrywide:
		return amountOrZero(l.DeliveryFeeCountrywide)
	default:
		return amountOrZero(l.DeliveryFeeLocal)
	}
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Cart holds a buyer's current lines plus running totals. Totals are kept
// consistent by recalculating through one shared path on every mutation.
type Cart struct {
	BuyerID     string          `json:"buyer_id"`
	Items       []CartLine      `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RecalcTotals rebuilds TotalItems and TotalAmount from the current lines.
// Every cart mutator runs through here so the totals can never drift from
// the line list.
func (c *Cart) RecalcTotals() {
	items := 0
	amount := decimal.Zero
	for _, line := range c.Items {
		items += line.Quantity
		amount = amount.Add(line.Extended())
	}
	c.TotalItems = items
	c.TotalAmount = amount
}

// ShopGroup is one shop's slice of the cart, produced by grouping lines by
// owning shop for per-shop order creation.
type ShopGroup struct {
	ShopID   uuid.UUID       `json:"shop_id"`
	ShopName string          `json:"shop_name"`
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// GroupByShop partitions lines by shop id, preserving first-seen shop order.
// Every line lands in exactly one group.
func GroupByShop(lines []CartLine) []ShopGroup {
	var groups []ShopGroup
	index := make(map[uuid.UUID]int)

	for _, line := range lines {
		i, ok := index[line.ShopID]
		if !ok {
			i = len(groups)
			index[line.ShopID] = i
			groups = append(groups, ShopGroup{
				ShopID:   line.ShopID,
				ShopName: line.ShopName,
				Subtotal: decimal.Zero,
			})
		}
		groups[i].Items = append(groups[i].Items, line)
		groups[i].Subtotal = groups[i].Subtotal.Add(line.Extended())
	}

	return groups
}
