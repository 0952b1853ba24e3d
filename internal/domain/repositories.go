package domain

import "context"

// Paginated reads take a 1-based page number and a page size and return
// (items, totalItems, error). totalItems is 0 when the server omits it.

// CatalogClient provides remote access to products and their variations
type CatalogClient interface {
	GetProducts(ctx context.Context, page, perPage int) ([]*Product, int, error)
	GetProductVariations(ctx context.Context, productID int64, page, perPage int) ([]*ProductVariation, int, error)
	SearchProducts(ctx context.Context, query string, page, perPage int) ([]*Product, int, error)
}

// OrderClient provides remote access to orders and refunds
type OrderClient interface {
	GetOrders(ctx context.Context, status string, page, perPage int) ([]*Order, int, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	GetRefunds(ctx context.Context, orderID int64, page, perPage int) ([]*Refund, int, error)
}

// ReviewClient provides remote access to product reviews
type ReviewClient interface {
	GetProductReviews(ctx context.Context, page, perPage int) ([]*ProductReview, int, error)
}

// ReportClient provides remote access to store reports
type ReportClient interface {
	GetStoreStats(ctx context.Context, period string) (*StoreStats, error)
	GetTopPerformers(ctx context.Context, period string, limit int) ([]TopPerformer, error)
}

// StoreClient is everything a store backend must implement
type StoreClient interface {
	CatalogClient
	OrderClient
	ReviewClient
	ReportClient
}
