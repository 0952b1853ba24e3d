package orders

import (
	"context"
	"log/slog"

	"github.com/mmcdole/wooterm/internal/domain"
)

const (
	refundsPageSize = 25

	// the cache holds one order list, so every page is requested unfiltered
	anyStatus = ""
)

// Commands fetches orders and refunds from the store API and writes them to the cache.
type Commands struct {
	client domain.OrderClient
	store  domain.Store
	siteID int64
	logger *slog.Logger
}

// NewCommands creates a new Commands instance.
func NewCommands(client domain.OrderClient, store domain.Store, siteID int64, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{client: client, store: store, siteID: siteID, logger: logger}
}

// SyncOrders fetches one page of orders of any status.
// The first page replaces the cached order list.
func (c *Commands) SyncOrders(ctx context.Context, page, pageSize int) (int, error) {
	orders, total, err := c.client.GetOrders(ctx, anyStatus, page, pageSize)
	if err != nil {
		c.logger.Error("failed to fetch orders", "error", err, "page", page)
		return 0, err
	}
	if page == 1 {
		c.store.ResetList(domain.OrdersScope(c.siteID))
	}
	if err := c.store.UpsertOrders(c.siteID, orders); err != nil {
		c.logger.Error("failed to save orders", "error", err)
		return 0, err
	}
	c.logger.Debug("synced orders", "page", page, "count", len(orders), "total", total)
	return total, nil
}

// SyncOrder refreshes a single order
func (c *Commands) SyncOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := c.client.GetOrder(ctx, orderID)
	if err != nil {
		c.logger.Error("failed to fetch order", "error", err, "orderID", orderID)
		return nil, err
	}
	if err := c.store.UpsertOrders(c.siteID, []*domain.Order{order}); err != nil {
		c.logger.Error("failed to save order", "error", err, "orderID", orderID)
	}
	return order, nil
}

// SyncRefunds fetches every refund of an order and replaces the cached refunds
func (c *Commands) SyncRefunds(ctx context.Context, orderID int64, onProgress domain.ProgressFunc) ([]*domain.Refund, error) {
	refunds, err := fetchAll(ctx,
		func(ctx context.Context, page, perPage int) ([]*domain.Refund, int, error) {
			return c.client.GetRefunds(ctx, orderID, page, perPage)
		},
		refundsPageSize,
		onProgress,
	)
	if err != nil {
		c.logger.Error("failed to fetch refunds", "error", err, "orderID", orderID)
		return nil, err
	}
	if err := c.store.SaveRefunds(c.siteID, orderID, refunds); err != nil {
		c.logger.Error("failed to save refunds", "error", err, "orderID", orderID)
	}
	c.logger.Debug("synced refunds", "orderID", orderID, "count", len(refunds))
	return refunds, nil
}

// fetchAll is a generic pagination helper over 1-based pages.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page, perPage int) ([]T, int, error),
	pageSize int,
	onProgress domain.ProgressFunc,
) ([]T, error) {
	if pageSize <= 0 {
		pageSize = refundsPageSize
	}

	var all []T
	page := 1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if onProgress != nil {
			onProgress(len(all), total)
		}

		if len(all) >= total || len(items) == 0 {
			break
		}
		page++
	}

	return all, nil
}
