package orders

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

func (q *Queries) Orders() []*domain.Order {
	orders, _ := q.store.GetOrders(q.siteID)
	return orders
}

func (q *Queries) Order(orderID int64) (*domain.Order, bool) {
	return q.store.GetOrder(q.siteID, orderID)
}

func (q *Queries) Refunds(orderID int64) ([]*domain.Refund, bool) {
	return q.store.GetRefunds(q.siteID, orderID)
}

// RefundedProducts returns the condensed refunded products of a cached order
func (q *Queries) RefundedProducts(orderID int64) []domain.RefundedProduct {
	refunds, _ := q.store.GetRefunds(q.siteID, orderID)
	return RefundedProducts(refunds)
}

func (q *Queries) OrderResults() store.ScopeResults {
	return store.Results(q.store, domain.OrdersScope(q.siteID))
}
