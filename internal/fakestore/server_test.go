package fakestore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/woo"
)

func TestNewCatalog_Deterministic(t *testing.T) {
	a := NewCatalog(DefaultSizes)
	b := NewCatalog(DefaultSizes)

	assert.Equal(t, a, b)
	assert.Len(t, a.Products, DefaultSizes.Products)
	assert.Len(t, a.Orders, DefaultSizes.Orders)
	assert.Len(t, a.Variations[100], 3)
	assert.Len(t, a.Refunds[1000], 2)
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+apiPrefix+path, nil)
	require.NoError(t, err)
	req.SetBasicAuth("ck", "cs")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Pagination(t *testing.T) {
	srv := httptest.NewServer(New(NewCatalog(DefaultSizes), WithCredentials("ck", "cs")).Handler())
	defer srv.Close()

	resp := get(t, srv, "/orders?page=6&per_page=25")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "130", resp.Header.Get("X-WP-Total"))
	assert.Equal(t, "6", resp.Header.Get("X-WP-TotalPages"))

	var orders []woo.OrderDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	assert.Len(t, orders, 5)

	resp = get(t, srv, "/orders?page=9&per_page=25")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	assert.Empty(t, orders)

	resp = get(t, srv, "/orders?per_page=101")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RejectsBadCredentials(t *testing.T) {
	srv := httptest.NewServer(New(NewCatalog(DefaultSizes), WithCredentials("ck", "other")).Handler())
	defer srv.Close()

	resp := get(t, srv, "/products")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_FailNext(t *testing.T) {
	fake := New(NewCatalog(DefaultSizes))
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	fake.FailNext("/products", 1, http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusOK, get(t, srv, "/orders").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/products").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/products").StatusCode)
	assert.Equal(t, []string{"/orders", "/products", "/products"}, fake.Requests())
}
