package domain

import "github.com/shopspring/decimal"

// RefundedProduct condenses all refunded line items of the same product.
// It is derived from a list of OrderItemRefund and never mutated in place.
type RefundedProduct struct {
	ProductID   int64
	VariationID int64
	Name        string
	Price       string
	Quantity    int
	SKU         string
	Total       decimal.Decimal
}
