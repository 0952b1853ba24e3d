package catalog

import (
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/store"
)

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store  domain.Store
	siteID int64
}

// NewQueries creates a new Queries instance.
func NewQueries(s domain.Store, siteID int64) *Queries {
	return &Queries{store: s, siteID: siteID}
}

func (q *Queries) Products() []*domain.Product {
	products, _ := q.store.GetProducts(q.siteID)
	return products
}

func (q *Queries) Product(productID int64) (*domain.Product, bool) {
	return q.store.GetProduct(q.siteID, productID)
}

func (q *Queries) Variations(productID int64) []*domain.ProductVariation {
	variations, _ := q.store.GetVariations(q.siteID, productID)
	return variations
}

func (q *Queries) Reviews() []*domain.ProductReview {
	reviews, _ := q.store.GetReviews(q.siteID)
	return reviews
}

func (q *Queries) ProductResults() store.ScopeResults {
	return store.Results(q.store, domain.ProductsScope(q.siteID))
}

func (q *Queries) VariationResults(productID int64) store.ScopeResults {
	return store.Results(q.store, domain.VariationsScope(q.siteID, productID))
}

func (q *Queries) ReviewResults() store.ScopeResults {
	return store.Results(q.store, domain.ReviewsScope(q.siteID))
}
