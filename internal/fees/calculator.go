// Package fees derives the due-now totals for a set of cart lines.
// Calculation is pure: the same lines, zone and deposit flag always
// produce the same breakdown.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/simbarashe-m/musika/internal/domain"
)

var depositRate = decimal.New(5, -1) // pay half up front, remainder on arrival

// Breakdown is the aggregated monetary result of pricing a set of lines.
type Breakdown struct {
	StandardTotal      decimal.Decimal `json:"standard_total"`
	FullOnOrderTotal   decimal.Decimal `json:"full_on_order_total"`
	OnOrderTotal       decimal.Decimal `json:"on_order_total"`
	DeliveryFeesTotal  decimal.Decimal `json:"delivery_fees_total"`
	RunnerFeesTotal    decimal.Decimal `json:"runner_fees_total"`
	TransportFeesTotal decimal.Decimal `json:"transport_fees_total"`
	ShippingFee        decimal.Decimal `json:"shipping_fee"`
	Total              decimal.Decimal `json:"total"`
}

// Calculate prices the given lines for one delivery zone.
//
// Delivery fees apply only to on-order lines, selected by zone, and drop to
// zero for any line whose extended price meets its free-delivery threshold.
// Runner and transport fees are per-unit surcharges summed wherever present.
// In deposit mode the on-order portion due now is half the full on-order
// value. Transport fees are collected on delivery, so they are reported but
// excluded from Total.
func Calculate(lines []domain.CartLine, zone domain.DeliveryZone, depositMode bool, shippingFee decimal.Decimal) Breakdown {
	b := Breakdown{
		StandardTotal:      decimal.Zero,
		FullOnOrderTotal:   decimal.Zero,
		OnOrderTotal:       decimal.Zero,
		DeliveryFeesTotal:  decimal.Zero,
		RunnerFeesTotal:    decimal.Zero,
		TransportFeesTotal: decimal.Zero,
		ShippingFee:        shippingFee,
	}

	for _, line := range lines {
		ext := line.Extended()
		qty := decimal.NewFromInt(int64(line.Quantity))

		if line.InStock {
			b.StandardTotal = b.StandardTotal.Add(ext)
		} else {
			b.FullOnOrderTotal = b.FullOnOrderTotal.Add(ext)
			b.DeliveryFeesTotal = b.DeliveryFeesTotal.Add(deliveryFee(line, zone, ext))
		}

		if line.RunnerFee != nil {
			b.RunnerFeesTotal = b.RunnerFeesTotal.Add(line.RunnerFee.Mul(qty))
		}
		if line.TransportFee != nil {
			b.TransportFeesTotal = b.TransportFeesTotal.Add(line.TransportFee.Mul(qty))
		}
	}

	b.OnOrderTotal = b.FullOnOrderTotal
	if depositMode {
		b.OnOrderTotal = b.FullOnOrderTotal.Mul(depositRate)
	}

	b.Total = b.StandardTotal.
		Add(b.OnOrderTotal).
		Add(b.ShippingFee).
		Add(b.DeliveryFeesTotal).
		Add(b.RunnerFeesTotal)

	return b
}

func deliveryFee(line domain.CartLine, zone domain.DeliveryZone, ext decimal.Decimal) decimal.Decimal {
	if thr := line.FreeDeliveryThreshold; thr != nil && thr.IsPositive() && ext.GreaterThanOrEqual(*thr) {
		return decimal.Zero
	}
	return line.DeliveryFeeFor(zone)
}
