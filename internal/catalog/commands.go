package catalog

import (
	"context"
	"log/slog"

	"github.com/mmcdole/wooterm/internal/domain"
)

// Commands fetches catalog pages from the store API and writes them to the cache.
// The first page of a list replaces the cached list; later pages are merged in.
type Commands struct {
	catalog domain.CatalogClient
	reviews domain.ReviewClient
	store   domain.Store
	siteID  int64
	logger  *slog.Logger
}

// NewCommands creates a new Commands instance.
func NewCommands(catalog domain.CatalogClient, reviews domain.ReviewClient, store domain.Store, siteID int64, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{catalog: catalog, reviews: reviews, store: store, siteID: siteID, logger: logger}
}

// SyncProducts fetches one page of products and returns the remote total
func (c *Commands) SyncProducts(ctx context.Context, page, pageSize int) (int, error) {
	products, total, err := c.catalog.GetProducts(ctx, page, pageSize)
	if err != nil {
		c.logger.Error("failed to fetch products", "error", err, "page", page)
		return 0, err
	}
	if page == 1 {
		c.store.ResetList(domain.ProductsScope(c.siteID))
	}
	if err := c.store.UpsertProducts(c.siteID, products); err != nil {
		c.logger.Error("failed to save products", "error", err, "page", page)
		return 0, err
	}
	c.logger.Debug("synced products", "page", page, "count", len(products), "total", total)
	return total, nil
}

// SyncVariations fetches one page of a product's variations
func (c *Commands) SyncVariations(ctx context.Context, productID int64, page, pageSize int) (int, error) {
	variations, total, err := c.catalog.GetProductVariations(ctx, productID, page, pageSize)
	if err != nil {
		c.logger.Error("failed to fetch variations", "error", err, "productID", productID, "page", page)
		return 0, err
	}
	if page == 1 {
		c.store.ResetList(domain.VariationsScope(c.siteID, productID))
	}
	if err := c.store.UpsertVariations(c.siteID, productID, variations); err != nil {
		c.logger.Error("failed to save variations", "error", err, "productID", productID)
		return 0, err
	}
	c.logger.Debug("synced variations", "productID", productID, "page", page, "count", len(variations))
	return total, nil
}

// SyncReviews fetches one page of product reviews
func (c *Commands) SyncReviews(ctx context.Context, page, pageSize int) (int, error) {
	reviews, total, err := c.reviews.GetProductReviews(ctx, page, pageSize)
	if err != nil {
		c.logger.Error("failed to fetch reviews", "error", err, "page", page)
		return 0, err
	}
	if page == 1 {
		c.store.ResetList(domain.ReviewsScope(c.siteID))
	}
	if err := c.store.UpsertReviews(c.siteID, reviews); err != nil {
		c.logger.Error("failed to save reviews", "error", err)
		return 0, err
	}
	c.logger.Debug("synced reviews", "page", page, "count", len(reviews))
	return total, nil
}

// SearchProducts queries the store API. Results are returned in server
// order and merged into the product cache without replacing it.
func (c *Commands) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	products, total, err := c.catalog.SearchProducts(ctx, query, page, pageSize)
	if err != nil {
		c.logger.Warn("product search failed", "error", err, "query", query)
		return nil, 0, err
	}
	if err := c.store.UpsertProducts(c.siteID, products); err != nil {
		c.logger.Error("failed to save search results", "error", err)
	}
	return products, total, nil
}
