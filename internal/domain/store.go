package domain

import "fmt"

// ScopeKind identifies which cached collection a Scope refers to
type ScopeKind int

const (
	ScopeProducts ScopeKind = iota
	ScopeVariations
	ScopeOrders
	ScopeReviews
	ScopeRefunds
)

// Scope names one cached list. ParentID is the product (variations)
// or order (refunds) the list belongs to, zero otherwise.
type Scope struct {
	Kind     ScopeKind
	SiteID   int64
	ParentID int64
}

func ProductsScope(siteID int64) Scope { return Scope{Kind: ScopeProducts, SiteID: siteID} }
func OrdersScope(siteID int64) Scope   { return Scope{Kind: ScopeOrders, SiteID: siteID} }
func ReviewsScope(siteID int64) Scope  { return Scope{Kind: ScopeReviews, SiteID: siteID} }

func VariationsScope(siteID, productID int64) Scope {
	return Scope{Kind: ScopeVariations, SiteID: siteID, ParentID: productID}
}

func RefundsScope(siteID, orderID int64) Scope {
	return Scope{Kind: ScopeRefunds, SiteID: siteID, ParentID: orderID}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeProducts:
		return fmt.Sprintf("site:%d:products", s.SiteID)
	case ScopeVariations:
		return fmt.Sprintf("site:%d:product:%d:variations", s.SiteID, s.ParentID)
	case ScopeOrders:
		return fmt.Sprintf("site:%d:orders", s.SiteID)
	case ScopeReviews:
		return fmt.Sprintf("site:%d:reviews", s.SiteID)
	case ScopeRefunds:
		return fmt.Sprintf("site:%d:order:%d:refunds", s.SiteID, s.ParentID)
	default:
		return "unknown"
	}
}

// Store handles the local cache (BoltDB + memory).
// Screens read directly from Store; services write to it after fetching.
type Store interface {
	// === Products ===
	GetProducts(siteID int64) ([]*Product, bool)
	GetProduct(siteID, productID int64) (*Product, bool)
	UpsertProducts(siteID int64, products []*Product) error

	// === Variations (sorted by menu order) ===
	GetVariations(siteID, productID int64) ([]*ProductVariation, bool)
	UpsertVariations(siteID, productID int64, variations []*ProductVariation) error

	// === Orders (newest first) ===
	GetOrders(siteID int64) ([]*Order, bool)
	GetOrder(siteID, orderID int64) (*Order, bool)
	UpsertOrders(siteID int64, orders []*Order) error

	// === Reviews (newest first) ===
	GetReviews(siteID int64) ([]*ProductReview, bool)
	UpsertReviews(siteID int64, reviews []*ProductReview) error

	// === Refunds ===
	GetRefunds(siteID, orderID int64) ([]*Refund, bool)
	SaveRefunds(siteID, orderID int64, refunds []*Refund) error

	// === Dashboard ===
	GetDashboard(siteID int64) (*DashboardSnapshot, bool)
	SaveDashboard(siteID int64, snapshot *DashboardSnapshot) error

	// Count returns the number of cached items in scope
	Count(scope Scope) int

	// === Invalidation ===

	// ResetList drops the cached list for scope, leaving child scopes intact
	ResetList(scope Scope)
	InvalidateScope(scope Scope)
	InvalidateAll()

	Close() error
}
