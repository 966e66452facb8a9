package services

import (
	"shoplite/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.RequireFromString("50.00")
	// ShippingFee is the flat fee charged below the threshold.
	ShippingFee = decimal.RequireFromString("4.99")
	// TaxRate is the VAT applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.20")
)

// ComputeTotals prices a cart. It is recomputed on every call.
func ComputeTotals(cart *models.Cart) models.Totals {
	subtotal := decimal.Zero
	items := 0
	for _, line := range cart.Lines() {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Qty))))
		items += line.Qty
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(FreeShippingThreshold) {
		shipping = ShippingFee
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	grand := subtotal.Add(shipping).Add(tax).Round(2)

	return models.Totals{
		Items:    items,
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Grand:    grand.InexactFloat64(),
	}
}
