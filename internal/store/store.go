package store

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/wooterm/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketProducts   = []byte("products")
	bucketVariations = []byte("variations")
	bucketOrders     = []byte("orders")
	bucketReviews    = []byte("reviews")
	bucketRefunds    = []byte("refunds")
	bucketReports    = []byte("reports")

	allBuckets = [][]byte{bucketProducts, bucketVariations, bucketOrders, bucketReviews, bucketRefunds, bucketReports}
)

// CacheStore implements domain.Store using BoltDB.
// Each scope is stored as one JSON array under its scope key.
type CacheStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Serializes read-merge-write in upserts
	writeMu sync.Mutex

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.Store = (*CacheStore)(nil)

// New opens the cache for storeURL under baseCacheDir.
// An empty baseCacheDir gives a memory-only store.
func New(baseCacheDir, storeURL string) (*CacheStore, error) {
	if baseCacheDir == "" {
		return &CacheStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if storeURL != "" {
		dir = filepath.Join(baseCacheDir, hashStoreURL(storeURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "wooterm.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CacheStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashStoreURL(storeURL string) string {
	normalized := strings.TrimRight(strings.ToLower(storeURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CacheStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CacheStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CacheStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *CacheStore) delete(bucket []byte, key string) {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	_ = s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *CacheStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	_ = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && bytes.HasPrefix(k, prefixBytes); k, _ = c.Next() {
			keys = append(keys, bytes.Clone(k))
		}
		return deleteKeys(b, keys)
	})
}

// deleteKeys removes keys collected by a cursor pass; deleting while
// iterating makes the cursor skip entries.
func deleteKeys(b *bolt.Bucket, keys [][]byte) error {
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// upsertList merges items into the list stored at key, replacing entries
// with the same id, then re-sorts the whole list with less.
func upsertList[T any](s *CacheStore, bucket []byte, key string, items []*T, id func(*T) int64, less func(a, b *T) int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existing []*T
	s.get(bucket, key, &existing)

	index := make(map[int64]int, len(existing))
	for i, item := range existing {
		index[id(item)] = i
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		if i, ok := index[id(item)]; ok {
			existing[i] = item
			continue
		}
		index[id(item)] = len(existing)
		existing = append(existing, item)
	}

	slices.SortStableFunc(existing, less)
	return s.set(bucket, key, existing)
}

func bucketFor(kind domain.ScopeKind) []byte {
	switch kind {
	case domain.ScopeProducts:
		return bucketProducts
	case domain.ScopeVariations:
		return bucketVariations
	case domain.ScopeOrders:
		return bucketOrders
	case domain.ScopeReviews:
		return bucketReviews
	case domain.ScopeRefunds:
		return bucketRefunds
	default:
		return nil
	}
}

// === Products (sorted by name) ===

func byProductName(a, b *domain.Product) int {
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.ProductID, b.ProductID)
}

func (s *CacheStore) GetProducts(siteID int64) ([]*domain.Product, bool) {
	var products []*domain.Product
	ok := s.get(bucketProducts, domain.ProductsScope(siteID).String(), &products)
	return products, ok
}

func (s *CacheStore) GetProduct(siteID, productID int64) (*domain.Product, bool) {
	products, _ := s.GetProducts(siteID)
	for _, p := range products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return nil, false
}

func (s *CacheStore) UpsertProducts(siteID int64, products []*domain.Product) error {
	return upsertList(s, bucketProducts, domain.ProductsScope(siteID).String(), products,
		func(p *domain.Product) int64 { return p.ProductID }, byProductName)
}

// === Variations (hierarchical key: site:{siteID}:product:{productID}:variations) ===

func (s *CacheStore) GetVariations(siteID, productID int64) ([]*domain.ProductVariation, bool) {
	var variations []*domain.ProductVariation
	ok := s.get(bucketVariations, domain.VariationsScope(siteID, productID).String(), &variations)
	return variations, ok
}

func (s *CacheStore) UpsertVariations(siteID, productID int64, variations []*domain.ProductVariation) error {
	return upsertList(s, bucketVariations, domain.VariationsScope(siteID, productID).String(), variations,
		func(v *domain.ProductVariation) int64 { return v.ProductVariationID },
		func(a, b *domain.ProductVariation) int {
			if c := cmp.Compare(a.MenuOrder, b.MenuOrder); c != 0 {
				return c
			}
			return cmp.Compare(a.ProductVariationID, b.ProductVariationID)
		})
}

// === Orders (newest first) ===

func (s *CacheStore) GetOrders(siteID int64) ([]*domain.Order, bool) {
	var orders []*domain.Order
	ok := s.get(bucketOrders, domain.OrdersScope(siteID).String(), &orders)
	return orders, ok
}

func (s *CacheStore) GetOrder(siteID, orderID int64) (*domain.Order, bool) {
	orders, _ := s.GetOrders(siteID)
	for _, o := range orders {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return nil, false
}

func (s *CacheStore) UpsertOrders(siteID int64, orders []*domain.Order) error {
	return upsertList(s, bucketOrders, domain.OrdersScope(siteID).String(), orders,
		func(o *domain.Order) int64 { return o.OrderID },
		func(a, b *domain.Order) int {
			if c := b.DateCreated.Compare(a.DateCreated); c != 0 {
				return c
			}
			return cmp.Compare(b.OrderID, a.OrderID)
		})
}

// === Reviews (newest first) ===

func (s *CacheStore) GetReviews(siteID int64) ([]*domain.ProductReview, bool) {
	var reviews []*domain.ProductReview
	ok := s.get(bucketReviews, domain.ReviewsScope(siteID).String(), &reviews)
	return reviews, ok
}

func (s *CacheStore) UpsertReviews(siteID int64, reviews []*domain.ProductReview) error {
	return upsertList(s, bucketReviews, domain.ReviewsScope(siteID).String(), reviews,
		func(r *domain.ProductReview) int64 { return r.ReviewID },
		func(a, b *domain.ProductReview) int {
			if c := b.DateCreated.Compare(a.DateCreated); c != 0 {
				return c
			}
			return cmp.Compare(b.ReviewID, a.ReviewID)
		})
}

// === Refunds (hierarchical key: site:{siteID}:order:{orderID}:refunds) ===

func (s *CacheStore) GetRefunds(siteID, orderID int64) ([]*domain.Refund, bool) {
	var refunds []*domain.Refund
	ok := s.get(bucketRefunds, domain.RefundsScope(siteID, orderID).String(), &refunds)
	return refunds, ok
}

// SaveRefunds replaces all refunds of an order
func (s *CacheStore) SaveRefunds(siteID, orderID int64, refunds []*domain.Refund) error {
	return s.set(bucketRefunds, domain.RefundsScope(siteID, orderID).String(), refunds)
}

// === Dashboard ===

func dashboardKey(siteID int64) string {
	return fmt.Sprintf("site:%d:dashboard", siteID)
}

func (s *CacheStore) GetDashboard(siteID int64) (*domain.DashboardSnapshot, bool) {
	var snapshot domain.DashboardSnapshot
	if !s.get(bucketReports, dashboardKey(siteID), &snapshot) {
		return nil, false
	}
	return &snapshot, true
}

func (s *CacheStore) SaveDashboard(siteID int64, snapshot *domain.DashboardSnapshot) error {
	return s.set(bucketReports, dashboardKey(siteID), snapshot)
}

// Count returns the number of cached items in scope without decoding them
func (s *CacheStore) Count(scope domain.Scope) int {
	bucket := bucketFor(scope.Kind)
	if bucket == nil {
		return 0
	}
	var raw []json.RawMessage
	if !s.get(bucket, scope.String(), &raw) {
		return 0
	}
	return len(raw)
}

// === Cascade Invalidation (hierarchical prefix deletion) ===

// ResetList drops one cached list before a first-page sync rewrites it.
// Variations and refunds cached under it are kept.
func (s *CacheStore) ResetList(scope domain.Scope) {
	bucket := bucketFor(scope.Kind)
	if bucket == nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.delete(bucket, scope.String())
}

// InvalidateScope wipes one cached list. Invalidating products also wipes
// every product's variations; invalidating orders also wipes their refunds.
func (s *CacheStore) InvalidateScope(scope domain.Scope) {
	bucket := bucketFor(scope.Kind)
	if bucket == nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.delete(bucket, scope.String())
	switch scope.Kind {
	case domain.ScopeProducts:
		s.deletePrefix(bucketVariations, fmt.Sprintf("site:%d:product:", scope.SiteID))
	case domain.ScopeOrders:
		s.deletePrefix(bucketRefunds, fmt.Sprintf("site:%d:order:", scope.SiteID))
	}
}

func (s *CacheStore) InvalidateAll() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	_ = s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			var keys [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, bytes.Clone(k))
			}
			if err := deleteKeys(b, keys); err != nil {
				return err
			}
		}
		return nil
	})
}

// ScopeResults is a live read-only view of one cached list
type ScopeResults struct {
	store domain.Store
	scope domain.Scope
}

// Results returns a view of scope that reflects every later upsert
func Results(store domain.Store, scope domain.Scope) ScopeResults {
	return ScopeResults{store: store, scope: scope}
}

func (r ScopeResults) Count() int    { return r.store.Count(r.scope) }
func (r ScopeResults) IsEmpty() bool { return r.Count() == 0 }
