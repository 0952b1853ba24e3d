package orders

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmcdole/wooterm/internal/domain"
)

// refundKey identifies "the same product" across refunds. Item IDs differ
// between refunds of the same product, and quantity and amounts are summed,
// so none of them take part.
type refundKey struct {
	productID   int64
	variationID int64
	name        string
	price       string
	sku         string
}

// RefundedProducts condenses the refunded items of all refunds into one
// entry per product, sorted by product then variation ID. Totals that
// don't parse as decimals count as zero.
//
// Two distinct line items that agree on product, variation, name, price and
// SKU are indistinguishable here and are merged.
func RefundedProducts(refunds []*domain.Refund) []domain.RefundedProduct {
	index := make(map[refundKey]int)
	var products []domain.RefundedProduct

	for _, refund := range refunds {
		if refund == nil {
			continue
		}
		for _, item := range refund.Items {
			key := refundKey{
				productID:   item.ProductID,
				variationID: item.VariationID,
				name:        item.Name,
				price:       item.Price,
				sku:         item.SKU,
			}
			total, err := decimal.NewFromString(item.Total)
			if err != nil {
				total = decimal.Zero
			}

			if i, ok := index[key]; ok {
				products[i].Quantity += item.Quantity
				products[i].Total = products[i].Total.Add(total)
				continue
			}
			index[key] = len(products)
			products = append(products, domain.RefundedProduct{
				ProductID:   item.ProductID,
				VariationID: item.VariationID,
				Name:        item.Name,
				Price:       item.Price,
				Quantity:    item.Quantity,
				SKU:         item.SKU,
				Total:       total,
			})
		}
	}

	slices.SortStableFunc(products, func(a, b domain.RefundedProduct) int {
		if c := cmp.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return cmp.Compare(a.VariationID, b.VariationID)
	})
	return products
}
