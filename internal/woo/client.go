package woo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/mmcdole/wooterm/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "wooterm/1.0"
	apiPrefix      = "/wp-json/wc/v3"
	totalHeader    = "X-WP-Total"

	// MaxPageSize is the largest per_page the API accepts
	MaxPageSize = 100

	defaultMaxRetries = 3
)

// Client implements domain.StoreClient for the WooCommerce REST API (v3).
// A Client is bound to one store; SiteID tags every mapped entity.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	siteID         int64
	httpClient     *http.Client
	logger         *slog.Logger
	maxRetries     uint
	newBackOff     func() backoff.BackOff
}

var _ domain.StoreClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a transient failure is retried
func WithMaxRetries(n uint) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithSiteID sets the local site identifier stamped on mapped entities
func WithSiteID(id int64) Option {
	return func(c *Client) { c.siteID = id }
}

// WithBackOff sets the retry schedule factory. Each request gets a fresh schedule.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = f }
}

// NewClient creates a new WooCommerce API client for the store at baseURL
func NewClient(baseURL, consumerKey, consumerSecret string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SiteID returns the local site identifier of this client
func (c *Client) SiteID() int64 {
	return c.siteID
}

// StatusError is a non-success response that isn't mapped to a domain error
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

type response struct {
	body   []byte
	header http.Header
}

// doRequest performs an authenticated GET, retrying transient failures
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) (response, error) {
	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	attempt := func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return response{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		requestID := uuid.NewString()
		req.SetBasicAuth(c.consumerKey, c.consumerSecret)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-Request-ID", requestID)

		c.logger.Debug("woo request", "path", path, "query", query.Encode(), "requestID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return response{}, backoff.Permanent(err)
			}
			c.logger.Warn("woo request failed", "error", err, "requestID", requestID)
			return response{}, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return response{}, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return response{body: body, header: resp.Header}, nil
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return response{}, backoff.Permanent(domain.ErrAuthFailed)
		case resp.StatusCode == http.StatusNotFound:
			return response{}, backoff.Permanent(domain.ErrNotFound)
		}

		statusErr := parseStatusError(resp.StatusCode, body)
		c.logger.Error("woo request error", "status", resp.StatusCode, "code", statusErr.Code, "requestID", requestID)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return response{}, statusErr
		}
		return response{}, backoff.Permanent(statusErr)
	}

	return backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Debug("retrying woo request", "path", path, "error", err, "wait", wait)
		}),
	)
}

func parseStatusError(status int, body []byte) *StatusError {
	statusErr := &StatusError{StatusCode: status}
	var apiErr ErrorDTO
	if json.Unmarshal(body, &apiErr) == nil {
		statusErr.Code = apiErr.Code
		statusErr.Message = apiErr.Message
	}
	return statusErr
}

// getJSON fetches path and decodes the body into dest, returning the response headers
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) (http.Header, error) {
	resp, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(resp.body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.header, nil
}

// getPage fetches one page of a list endpoint. The total comes from the
// X-WP-Total header, falling back to the number of items returned.
func getPage[T any](ctx context.Context, c *Client, path string, query url.Values, page, perPage int) ([]T, int, error) {
	if page < 1 || perPage < 1 || perPage > MaxPageSize {
		return nil, 0, fmt.Errorf("%w: page=%d per_page=%d", domain.ErrInvalidPage, page, perPage)
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var items []T
	header, err := c.getJSON(ctx, path, query, &items)
	if err != nil {
		return nil, 0, err
	}

	total := len(items)
	if v := header.Get(totalHeader); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			total = n
		}
	}
	return items, total, nil
}

// Verify checks that the store is reachable and accepts the credentials
func (c *Client) Verify(ctx context.Context) error {
	_, _, err := getPage[ProductDTO](ctx, c, "/products", nil, 1, 1)
	return err
}

// GetProducts returns one page of products ordered by title
func (c *Client) GetProducts(ctx context.Context, page, perPage int) ([]*domain.Product, int, error) {
	query := url.Values{}
	query.Set("orderby", "title")
	query.Set("order", "asc")

	dtos, total, err := getPage[ProductDTO](ctx, c, "/products", query, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapProducts(dtos, c.siteID), total, nil
}

// SearchProducts returns one page of products matching query
func (c *Client) SearchProducts(ctx context.Context, keyword string, page, perPage int) ([]*domain.Product, int, error) {
	query := url.Values{}
	query.Set("search", keyword)

	dtos, total, err := getPage[ProductDTO](ctx, c, "/products", query, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapProducts(dtos, c.siteID), total, nil
}

// GetProductVariations returns one page of a product's variations in menu order
func (c *Client) GetProductVariations(ctx context.Context, productID int64, page, perPage int) ([]*domain.ProductVariation, int, error) {
	query := url.Values{}
	query.Set("orderby", "menu_order")
	query.Set("order", "asc")

	path := fmt.Sprintf("/products/%d/variations", productID)
	dtos, total, err := getPage[VariationDTO](ctx, c, path, query, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapVariations(dtos, c.siteID, productID), total, nil
}

// GetOrders returns one page of orders, newest first. An empty status means any.
func (c *Client) GetOrders(ctx context.Context, status string, page, perPage int) ([]*domain.Order, int, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	dtos, total, err := getPage[OrderDTO](ctx, c, "/orders", query, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapOrders(dtos, c.siteID), total, nil
}

// GetOrder returns a single order
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var dto OrderDTO
	if _, err := c.getJSON(ctx, fmt.Sprintf("/orders/%d", orderID), nil, &dto); err != nil {
		return nil, err
	}
	return mapOrder(dto, c.siteID), nil
}

// GetRefunds returns one page of an order's refunds
func (c *Client) GetRefunds(ctx context.Context, orderID int64, page, perPage int) ([]*domain.Refund, int, error) {
	path := fmt.Sprintf("/orders/%d/refunds", orderID)
	dtos, total, err := getPage[RefundDTO](ctx, c, path, nil, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapRefunds(dtos, c.siteID, orderID), total, nil
}

// GetProductReviews returns one page of product reviews, newest first
func (c *Client) GetProductReviews(ctx context.Context, page, perPage int) ([]*domain.ProductReview, int, error) {
	dtos, total, err := getPage[ReviewDTO](ctx, c, "/products/reviews", nil, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return MapReviews(dtos, c.siteID), total, nil
}

// GetStoreStats returns the sales summary for period (week, month, last_month, year)
func (c *Client) GetStoreStats(ctx context.Context, period string) (*domain.StoreStats, error) {
	query := url.Values{}
	query.Set("period", period)

	var dtos []SalesReportDTO
	if _, err := c.getJSON(ctx, "/reports/sales", query, &dtos); err != nil {
		return nil, err
	}
	return MapStoreStats(dtos, period), nil
}

// GetTopPerformers returns up to limit best-selling products for period
func (c *Client) GetTopPerformers(ctx context.Context, period string, limit int) ([]domain.TopPerformer, error) {
	query := url.Values{}
	query.Set("period", period)

	var dtos []TopSellerDTO
	if _, err := c.getJSON(ctx, "/reports/top_sellers", query, &dtos); err != nil {
		return nil, err
	}
	if limit > 0 && len(dtos) > limit {
		dtos = dtos[:limit]
	}
	return MapTopPerformers(dtos), nil
}
