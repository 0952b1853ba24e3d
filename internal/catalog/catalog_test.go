package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/store"
)

const siteID int64 = 3

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetProducts(ctx context.Context, page, perPage int) ([]*domain.Product, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

func (m *mockClient) GetProductVariations(ctx context.Context, productID int64, page, perPage int) ([]*domain.ProductVariation, int, error) {
	args := m.Called(ctx, productID, page, perPage)
	return args.Get(0).([]*domain.ProductVariation), args.Int(1), args.Error(2)
}

func (m *mockClient) SearchProducts(ctx context.Context, query string, page, perPage int) ([]*domain.Product, int, error) {
	args := m.Called(ctx, query, page, perPage)
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

func (m *mockClient) GetProductReviews(ctx context.Context, page, perPage int) ([]*domain.ProductReview, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]*domain.ProductReview), args.Int(1), args.Error(2)
}

func setup(t *testing.T) (*mockClient, *Commands, *Queries) {
	t.Helper()
	s, err := store.New("", "")
	require.NoError(t, err)
	client := &mockClient{}
	return client, NewCommands(client, client, s, siteID, nil), NewQueries(s, siteID)
}

func TestSyncProducts_FirstPageReplacesCache(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProducts", ctx, 1, 2).Return([]*domain.Product{{ProductID: 1, Name: "A"}, {ProductID: 2, Name: "B"}}, 3, nil).Once()
	client.On("GetProducts", ctx, 2, 2).Return([]*domain.Product{{ProductID: 3, Name: "C"}}, 3, nil).Once()

	total, err := cmds.SyncProducts(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	_, err = cmds.SyncProducts(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, queries.ProductResults().Count())

	// A product deleted remotely disappears on the next first-page sync
	client.On("GetProducts", ctx, 1, 2).Return([]*domain.Product{{ProductID: 2, Name: "B"}}, 1, nil).Once()
	_, err = cmds.SyncProducts(ctx, 1, 2)
	require.NoError(t, err)

	products := queries.Products()
	require.Len(t, products, 1)
	assert.Equal(t, int64(2), products[0].ProductID)
	client.AssertExpectations(t)
}

func TestSyncProducts_FailureKeepsCache(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProducts", ctx, 1, 25).Return([]*domain.Product{{ProductID: 1}}, 1, nil).Once()
	client.On("GetProducts", ctx, 1, 25).Return([]*domain.Product(nil), 0, domain.ErrServerOffline).Once()

	_, err := cmds.SyncProducts(ctx, 1, 25)
	require.NoError(t, err)
	_, err = cmds.SyncProducts(ctx, 1, 25)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, 1, queries.ProductResults().Count())
}

func TestSyncVariations(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProductVariations", ctx, int64(7), 1, 25).Return([]*domain.ProductVariation{
		{ProductVariationID: 71, MenuOrder: 2},
		{ProductVariationID: 72, MenuOrder: 1},
	}, 2, nil)

	_, err := cmds.SyncVariations(ctx, 7, 1, 25)
	require.NoError(t, err)

	variations := queries.Variations(7)
	require.Len(t, variations, 2)
	assert.Equal(t, int64(72), variations[0].ProductVariationID)
	assert.True(t, queries.VariationResults(8).IsEmpty())
}

func TestSyncProducts_FirstPageKeepsVariationPages(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProductVariations", ctx, int64(7), 1, 2).Return([]*domain.ProductVariation{
		{ProductVariationID: 1, MenuOrder: 1},
		{ProductVariationID: 2, MenuOrder: 2},
	}, 4, nil).Once()
	client.On("GetProducts", ctx, 1, 25).Return([]*domain.Product{{ProductID: 7, Name: "Hoodie"}}, 1, nil).Once()
	client.On("GetProductVariations", ctx, int64(7), 2, 2).Return([]*domain.ProductVariation{
		{ProductVariationID: 3, MenuOrder: 3},
		{ProductVariationID: 4, MenuOrder: 4},
	}, 4, nil).Once()

	_, err := cmds.SyncVariations(ctx, 7, 1, 2)
	require.NoError(t, err)

	// a products refresh while the variations list is open
	_, err = cmds.SyncProducts(ctx, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, queries.VariationResults(7).Count())

	_, err = cmds.SyncVariations(ctx, 7, 2, 2)
	require.NoError(t, err)

	var ids []int64
	for _, v := range queries.Variations(7) {
		ids = append(ids, v.ProductVariationID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	client.AssertExpectations(t)
}

func TestSyncReviews(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProductReviews", ctx, 1, 25).Return([]*domain.ProductReview{{ReviewID: 1}}, 1, nil)

	_, err := cmds.SyncReviews(ctx, 1, 25)
	require.NoError(t, err)
	assert.Len(t, queries.Reviews(), 1)
	assert.Equal(t, 1, queries.ReviewResults().Count())
}

func TestSearchProducts_MergesIntoCache(t *testing.T) {
	client, cmds, queries := setup(t)
	ctx := context.Background()

	client.On("GetProducts", ctx, 1, 25).Return([]*domain.Product{{ProductID: 1, Name: "Mug"}}, 1, nil)
	client.On("SearchProducts", ctx, "hood", 1, 25).Return([]*domain.Product{{ProductID: 9, Name: "Hoodie"}}, 1, nil)
	client.On("SearchProducts", ctx, "fail", 1, 25).Return([]*domain.Product(nil), 0, errors.New("boom"))

	_, err := cmds.SyncProducts(ctx, 1, 25)
	require.NoError(t, err)

	found, total, err := cmds.SearchProducts(ctx, "hood", 1, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Hoodie", found[0].Name)
	assert.Len(t, queries.Products(), 2)

	_, ok := queries.Product(9)
	assert.True(t, ok)

	_, _, err = cmds.SearchProducts(ctx, "fail", 1, 25)
	assert.Error(t, err)
}
