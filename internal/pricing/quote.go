package pricing

import (
	"github.com/example/storefront/internal/readmodel"
	"github.com/shopspring/decimal"
)

// DefaultFreeShippingThreshold is the subtotal above which shipping is free
var DefaultFreeShippingThreshold = decimal.NewFromInt(75)

var hundred = decimal.NewFromInt(100)

// Quote is the derived pricing view of a cart. It is recomputed from the
// line items on every read and never stored, so it cannot drift from them.
type Quote struct {
	TotalItems            int             `json:"total_items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DiscountPercent       int             `json:"discount_percent"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	Total                 decimal.Decimal `json:"total"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	ShippingProgress      float64         `json:"shipping_progress"` // 0..1
	RemainingForShipping  decimal.Decimal `json:"remaining_for_free_shipping"`
}

// Compute derives a quote from cart lines and an applied discount percent.
// Lines with unparseable prices contribute nothing rather than failing the
// whole quote; the write side validates prices before they reach a cart.
func Compute(items []readmodel.CartLineReadModel, discountPercent int, freeShippingThreshold decimal.Decimal) Quote {
	if discountPercent < 0 {
		discountPercent = 0
	}
	if discountPercent > 100 {
		discountPercent = 100
	}

	subtotal := decimal.Zero
	totalItems := 0
	for _, item := range items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			continue
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalItems += item.Quantity
	}

	discount := subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred).Round(2)

	progress := 1.0
	if freeShippingThreshold.IsPositive() {
		ratio, _ := subtotal.Div(freeShippingThreshold).Float64()
		if ratio < 1 {
			progress = ratio
		}
	}

	remaining := freeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Quote{
		TotalItems:            totalItems,
		Subtotal:              subtotal,
		DiscountPercent:       discountPercent,
		DiscountAmount:        discount,
		Total:                 subtotal.Sub(discount),
		FreeShippingThreshold: freeShippingThreshold,
		ShippingProgress:      progress,
		RemainingForShipping:  remaining,
	}
}
