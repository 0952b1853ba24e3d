package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/catalog"
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/orders"
	"github.com/mmcdole/wooterm/internal/store"
)

type fakeRemote struct {
	products []*domain.Product
	err      error
	queries  []string
}

func (f *fakeRemote) SearchProducts(_ context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	f.queries = append(f.queries, query)
	return f.products, len(f.products), f.err
}

type fakeCache struct {
	products []*domain.Product
	orders   []*domain.Order
}

func (f fakeCache) Products() []*domain.Product { return f.products }
func (f fakeCache) Orders() []*domain.Order     { return f.orders }

func products(names ...string) []*domain.Product {
	out := make([]*domain.Product, len(names))
	for i, n := range names {
		out[i] = &domain.Product{ProductID: int64(i + 1), Name: n}
	}
	return out
}

func names(ps []*domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestIndex_Filter(t *testing.T) {
	idx := NewIndex(ProductItems(products("Hoodie with Logo", "Beanie", "Hoodie with Zipper", "Cap")))

	results := idx.Filter("HOODIE")
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, KindProduct, r.Kind)
		assert.Contains(t, r.Title, "Hoodie")
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, r.MatchedIndexes)
	}

	assert.Nil(t, idx.Filter("   "))
	assert.Empty(t, idx.Filter("xyz"))
	assert.Nil(t, NewIndex(nil).Filter("cap"))
}

func TestService_FilterLocalIncludesOrders(t *testing.T) {
	cache := fakeCache{
		products: products("Album", "Single"),
		orders: []*domain.Order{
			{OrderID: 1001, Number: "1001", BillingName: "Jane Smith"},
			{OrderID: 1002, Number: "1002", BillingName: "Ravi Patel"},
		},
	}
	svc := NewService(&fakeRemote{}, cache, nil)

	results := svc.FilterLocal("smith")
	require.Len(t, results, 1)
	assert.Equal(t, KindOrder, results[0].Kind)
	assert.Equal(t, int64(1001), results[0].ID)
	assert.Equal(t, "#1001 Jane Smith", results[0].Title)
	assert.Equal(t, "order", results[0].Kind.String())
}

func TestCacheFuncs_ReadsBothCaches(t *testing.T) {
	s, err := store.New("", "")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.UpsertProducts(1, products("Hoodie")))
	require.NoError(t, s.UpsertOrders(1, []*domain.Order{{OrderID: 7, Number: "7", BillingName: "Hood Robin"}}))

	cache := CacheFuncs{
		ProductsFunc: catalog.NewQueries(s, 1).Products,
		OrdersFunc:   orders.NewQueries(s, 1).Orders,
	}
	results := NewService(&fakeRemote{}, cache, nil).FilterLocal("hood")
	require.Len(t, results, 2)

	kinds := []Kind{results[0].Kind, results[1].Kind}
	assert.ElementsMatch(t, []Kind{KindProduct, KindOrder}, kinds)

	assert.Empty(t, CacheFuncs{}.Products())
	assert.Empty(t, CacheFuncs{}.Orders())
}

func TestRank(t *testing.T) {
	ranked := Rank(products("Tote bag", "Logo Cap", "Cap", "Capacitor", "Snapback c-a-p"), "cap")
	assert.Equal(t, []string{"Cap", "Capacitor", "Logo Cap", "Snapback c-a-p", "Tote bag"}, names(ranked))
}

func TestService_SearchProducts(t *testing.T) {
	remote := &fakeRemote{products: products("Logo Cap", "Cap")}
	svc := NewService(remote, fakeCache{}, nil)

	got, err := svc.SearchProducts(context.Background(), " cap ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cap", "Logo Cap"}, names(got))
	assert.Equal(t, []string{"cap"}, remote.queries)

	got, err = svc.SearchProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, remote.queries, 1)
}

func TestService_SearchProductsOfflineFallsBackToCache(t *testing.T) {
	remote := &fakeRemote{err: fmt.Errorf("get products: %w", domain.ErrServerOffline)}
	svc := NewService(remote, fakeCache{products: products("Beanie", "Belt")}, nil)

	got, err := svc.SearchProducts(context.Background(), "beanie")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beanie"}, names(got))
}

func TestService_SearchProductsOtherErrors(t *testing.T) {
	remote := &fakeRemote{err: domain.ErrAuthFailed}
	svc := NewService(remote, fakeCache{products: products("Beanie")}, nil)

	_, err := svc.SearchProducts(context.Background(), "beanie")
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}
