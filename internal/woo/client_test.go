package woo_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/fakestore"
	"github.com/mmcdole/wooterm/internal/woo"
)

func newTestClient(t *testing.T, key string) (*woo.Client, *fakestore.Server) {
	t.Helper()
	fake := fakestore.New(fakestore.NewCatalog(fakestore.DefaultSizes), fakestore.WithCredentials("ck_test", "cs_test"))
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client := woo.NewClient(srv.URL+"/", key, "cs_test",
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		woo.WithSiteID(9),
		woo.WithMaxRetries(2),
		woo.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	return client, fake
}

func TestClient_GetProducts(t *testing.T) {
	client, fake := newTestClient(t, "ck_test")

	products, total, err := client.GetProducts(context.Background(), 2, 25)
	require.NoError(t, err)
	assert.Equal(t, fakestore.DefaultSizes.Products, total)
	assert.Len(t, products, 25)
	assert.Equal(t, int64(9), products[0].SiteID)

	first, _, err := client.GetProducts(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.LessOrEqual(t, strings.ToLower(first[len(first)-1].Name), strings.ToLower(products[0].Name))

	assert.Contains(t, fake.Requests()[0], "orderby=title")
}

func TestClient_InvalidPage(t *testing.T) {
	client, fake := newTestClient(t, "ck_test")

	_, _, err := client.GetOrders(context.Background(), "", 0, 25)
	assert.ErrorIs(t, err, domain.ErrInvalidPage)

	_, _, err = client.GetOrders(context.Background(), "", 1, woo.MaxPageSize+1)
	assert.ErrorIs(t, err, domain.ErrInvalidPage)
	assert.Empty(t, fake.Requests())
}

func TestClient_AuthFailureIsNotRetried(t *testing.T) {
	client, fake := newTestClient(t, "wrong")

	_, _, err := client.GetProductReviews(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Len(t, fake.Requests(), 1)
	assert.ErrorIs(t, client.Verify(context.Background()), domain.ErrAuthFailed)
}

func TestClient_NotFound(t *testing.T) {
	client, _ := newTestClient(t, "ck_test")

	_, err := client.GetOrder(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	client, fake := newTestClient(t, "ck_test")
	fake.FailNext("/orders", 2, http.StatusServiceUnavailable)

	orders, total, err := client.GetOrders(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, orders, 10)
	assert.Equal(t, fakestore.DefaultSizes.Orders, total)
	assert.Len(t, fake.Requests(), 3)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	client, fake := newTestClient(t, "ck_test")
	fake.FailNext("/products/reviews", 5, http.StatusInternalServerError)

	_, _, err := client.GetProductReviews(context.Background(), 1, 10)
	var statusErr *woo.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "fake_failure", statusErr.Code)
	assert.Len(t, fake.Requests(), 3)
}

func TestClient_ServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := woo.NewClient(url, "ck", "cs", slog.New(slog.NewTextHandler(io.Discard, nil)),
		woo.WithMaxRetries(0))
	_, _, err := client.GetProducts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestClient_RequestID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := woo.NewClient(srv.URL, "ck", "cs", nil)
	_, total, err := client.GetProductReviews(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, _, err = client.GetProductReviews(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestClient_RefundsAndReports(t *testing.T) {
	client, _ := newTestClient(t, "ck_test")
	ctx := context.Background()

	refunds, total, err := client.GetRefunds(ctx, 1000, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, refunds, 2)
	assert.Equal(t, int64(1000), refunds[0].OrderID)
	assert.Equal(t, -1, refunds[0].Items[0].Quantity)

	variations, _, err := client.GetProductVariations(ctx, 100, 1, 10)
	require.NoError(t, err)
	require.Len(t, variations, 3)
	assert.LessOrEqual(t, variations[0].MenuOrder, variations[1].MenuOrder)

	stats, err := client.GetStoreStats(ctx, "week")
	require.NoError(t, err)
	assert.Equal(t, fakestore.DefaultSizes.Orders, stats.TotalOrders)

	top, err := client.GetTopPerformers(ctx, "week", 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	assert.GreaterOrEqual(t, top[0].Quantity, top[1].Quantity)

	found, _, err := client.SearchProducts(ctx, "hoodie", 1, 25)
	require.NoError(t, err)
	require.NotEmpty(t, found)
	for _, p := range found {
		assert.Contains(t, strings.ToLower(p.Name), "hoodie")
	}
}
