// Package search filters cached products and orders and ranks remote
// product search results.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/wooterm/internal/domain"
)

const remotePageSize = 25

// Kind is the type of entity behind a search Item
type Kind int

const (
	KindProduct Kind = iota
	KindOrder
)

func (k Kind) String() string {
	if k == KindOrder {
		return "order"
	}
	return "product"
}

// Item is one searchable entry
type Item struct {
	Kind  Kind
	ID    int64
	Title string
	Value any // *domain.Product or *domain.Order
}

// Result is a matched Item with the title positions that matched
type Result struct {
	Item
	MatchedIndexes []int
	Score          int // higher is better
}

// Index implements sahilm/fuzzy.Source over pre-lowercased titles
type Index struct {
	items       []Item
	lowerTitles []string
}

func NewIndex(items []Item) *Index {
	idx := &Index{items: items, lowerTitles: make([]string, len(items))}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(item.Title)
	}
	return idx
}

func (idx *Index) String(i int) string { return idx.lowerTitles[i] }
func (idx *Index) Len() int            { return len(idx.items) }

// Filter returns the items matching query, best match first.
// An empty query matches nothing.
func (idx *Index) Filter(query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" || idx.Len() == 0 {
		return nil
	}
	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Item:           idx.items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// ProductItems converts products to search items
func ProductItems(products []*domain.Product) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, Item{Kind: KindProduct, ID: p.ProductID, Title: p.Name, Value: p})
	}
	return items
}

// OrderItems converts orders to search items titled "#number name"
func OrderItems(orders []*domain.Order) []Item {
	items := make([]Item, 0, len(orders))
	for _, o := range orders {
		title := fmt.Sprintf("#%s %s", o.Number, o.BillingName)
		items = append(items, Item{Kind: KindOrder, ID: o.OrderID, Title: strings.TrimSpace(title), Value: o})
	}
	return items
}

// ProductSearcher runs a server-side product search
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

// Cache exposes the cached entities the local index is built from
type Cache interface {
	Products() []*domain.Product
	Orders() []*domain.Order
}

// CacheFuncs adapts two cache readers to Cache
type CacheFuncs struct {
	ProductsFunc func() []*domain.Product
	OrdersFunc   func() []*domain.Order
}

func (c CacheFuncs) Products() []*domain.Product {
	if c.ProductsFunc == nil {
		return nil
	}
	return c.ProductsFunc()
}

func (c CacheFuncs) Orders() []*domain.Order {
	if c.OrdersFunc == nil {
		return nil
	}
	return c.OrdersFunc()
}

// Service combines server-side product search with local filtering
type Service struct {
	remote ProductSearcher
	cache  Cache
	logger *slog.Logger
}

func NewService(remote ProductSearcher, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, cache: cache, logger: logger}
}

// FilterLocal searches the cached products and orders
func (s *Service) FilterLocal(query string) []Result {
	items := ProductItems(s.cache.Products())
	items = append(items, OrderItems(s.cache.Orders())...)
	return NewIndex(items).Filter(query)
}

// SearchProducts asks the server first and ranks its results against
// query. When the store is unreachable it falls back to the cached products.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	products, _, err := s.remote.SearchProducts(ctx, query, 1, remotePageSize)
	if err != nil {
		if !errors.Is(err, domain.ErrServerOffline) {
			return nil, err
		}
		s.logger.Warn("product search failed, falling back to cache", "error", err)
		matches := NewIndex(ProductItems(s.cache.Products())).Filter(query)
		local := make([]*domain.Product, len(matches))
		for i, m := range matches {
			local[i] = m.Value.(*domain.Product)
		}
		return local, nil
	}

	ranked := Rank(products, query)
	s.logger.Debug("product search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// Rank orders products by how well their name matches query. The server
// also matches on descriptions and SKUs, so products whose name doesn't
// match are kept at the end.
func Rank(products []*domain.Product, query string) []*domain.Product {
	query = strings.ToLower(query)

	type ranked struct {
		product *domain.Product
		score   int
	}
	all := make([]ranked, len(products))
	for i, p := range products {
		all[i] = ranked{product: p, score: matchScore(strings.ToLower(p.Name), query)}
	}
	slices.SortStableFunc(all, func(a, b ranked) int { return a.score - b.score })

	out := make([]*domain.Product, len(all))
	for i, r := range all {
		out[i] = r.product
	}
	return out
}

// matchScore is lower for better matches
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	if d := lfuzzy.RankMatchNormalizedFold(query, title); d >= 0 {
		return 100 + d
	}
	return 1000 + lfuzzy.LevenshteinDistance(query, title)
}
