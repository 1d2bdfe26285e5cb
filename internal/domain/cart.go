package domain

import "github.com/shopspring/decimal"

// CartLine is one product/quantity pair in the shopping cart. The product
// is a read-only snapshot; the cart never owns or mutates product records.
type CartLine struct {
	Product  Product
	Quantity int
}

// Subtotal is the line's price contribution (price × quantity).
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState is the cart as the UI sees it: lines in insertion order plus
// the derived totals, recomputed on every publication.
type CartState struct {
	Lines          []CartLine
	TotalPrice     decimal.Decimal
	TotalItemCount int
}
