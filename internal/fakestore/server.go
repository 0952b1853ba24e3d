// Package fakestore serves a deterministic WooCommerce-compatible REST API
// for development and tests.
package fakestore

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mmcdole/wooterm/internal/woo"
)

const (
	apiPrefix       = "/wp-json/wc/v3"
	defaultPageSize = 10
)

// Server is a fake store. It is safe for concurrent use.
type Server struct {
	catalog        *Catalog
	consumerKey    string
	consumerSecret string
	latency        time.Duration
	logger         *slog.Logger

	mu       sync.Mutex
	failures []failure
	requests []string
}

type failure struct {
	prefix    string
	status    int
	remaining int
}

// Option configures a Server
type Option func(*Server)

// WithCredentials requires HTTP basic auth with the given key and secret
func WithCredentials(key, secret string) Option {
	return func(s *Server) {
		s.consumerKey = key
		s.consumerSecret = secret
	}
}

// WithLatency delays every response
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithLogger logs every request
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a fake store serving catalog
func New(catalog *Catalog, opts ...Option) *Server {
	s := &Server{catalog: catalog}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next n requests whose API path starts with prefix
// (e.g. "/orders") fail with status.
func (s *Server) FailNext(prefix string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{prefix: prefix, status: status, remaining: n})
}

// Requests returns the API paths with query strings requested so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Handler returns the HTTP handler for the fake API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.injectFailures)

		r.Get("/products", s.listProducts)
		r.Get("/products/reviews", s.listReviews)
		r.Get("/products/{id}/variations", s.listVariations)
		r.Get("/orders", s.listOrders)
		r.Get("/orders/{id}", s.getOrder)
		r.Get("/orders/{id}/refunds", s.listRefunds)
		r.Get("/reports/sales", s.salesReport)
		r.Get("/reports/top_sellers", s.topSellers)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, apiPrefix)
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		s.mu.Lock()
		s.requests = append(s.requests, path)
		s.mu.Unlock()

		if s.logger != nil {
			s.logger.Info("request", "path", path, "requestID", r.Header.Get("X-Request-ID"))
		}
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.consumerKey != "" {
			key, secret, ok := r.BasicAuth()
			if !ok || key != s.consumerKey || secret != s.consumerSecret {
				writeError(w, http.StatusUnauthorized, "woocommerce_rest_cannot_view", "Sorry, you cannot list resources.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, apiPrefix)

		s.mu.Lock()
		status := 0
		for i := range s.failures {
			f := &s.failures[i]
			if f.remaining > 0 && strings.HasPrefix(path, f.prefix) {
				f.remaining--
				status = f.status
				break
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, "fake_failure", "Injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(woo.ErrorDTO{Code: code, Message: message})
}

// paginate writes one page of items with the X-WP-Total headers
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, perPage := 1, defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): page")
			return
		}
		page = n
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > woo.MaxPageSize {
			writeError(w, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): per_page")
			return
		}
		perPage = n
	}

	total := len(items)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	w.Header().Set("X-WP-Total", strconv.Itoa(total))
	w.Header().Set("X-WP-TotalPages", strconv.Itoa((total+perPage-1)/perPage))
	writeJSON(w, items[start:end])
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products := slices.Clone(s.catalog.Products)
	if q := strings.ToLower(r.URL.Query().Get("search")); q != "" {
		products = slices.DeleteFunc(products, func(p woo.ProductDTO) bool {
			return !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q)
		})
	}
	if r.URL.Query().Get("orderby") == "title" {
		slices.SortStableFunc(products, func(a, b woo.ProductDTO) int {
			if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	paginate(w, r, products)
}

func (s *Server) listVariations(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok || !slices.ContainsFunc(s.catalog.Products, func(p woo.ProductDTO) bool { return p.ID == id }) {
		writeError(w, http.StatusNotFound, "woocommerce_rest_product_invalid_id", "Invalid ID.")
		return
	}
	variations := slices.Clone(s.catalog.Variations[id])
	slices.SortStableFunc(variations, func(a, b woo.VariationDTO) int {
		if c := cmp.Compare(a.MenuOrder, b.MenuOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	paginate(w, r, variations)
}

func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	})
	return out
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders := newestFirst(s.catalog.Orders,
		func(o woo.OrderDTO) time.Time { return o.DateCreated.Time },
		func(o woo.OrderDTO) int64 { return o.ID })
	if status := r.URL.Query().Get("status"); status != "" && status != "any" {
		orders = slices.DeleteFunc(orders, func(o woo.OrderDTO) bool { return o.Status != status })
	}
	paginate(w, r, orders)
}

func (s *Server) findOrder(r *http.Request) (woo.OrderDTO, bool) {
	id, ok := idParam(r)
	if !ok {
		return woo.OrderDTO{}, false
	}
	for _, o := range s.catalog.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return woo.OrderDTO{}, false
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.findOrder(r)
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_shop_order_invalid_id", "Invalid ID.")
		return
	}
	writeJSON(w, o)
}

func (s *Server) listRefunds(w http.ResponseWriter, r *http.Request) {
	o, ok := s.findOrder(r)
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_shop_order_invalid_id", "Invalid ID.")
		return
	}
	refunds := newestFirst(s.catalog.Refunds[o.ID],
		func(rf woo.RefundDTO) time.Time { return rf.DateCreated.Time },
		func(rf woo.RefundDTO) int64 { return rf.ID })
	paginate(w, r, refunds)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews := newestFirst(s.catalog.Reviews,
		func(rv woo.ReviewDTO) time.Time { return rv.DateCreated.Time },
		func(rv woo.ReviewDTO) int64 { return rv.ID })
	paginate(w, r, reviews)
}

func (s *Server) salesReport(w http.ResponseWriter, _ *http.Request) {
	var cents, items int
	customers := make(map[string]struct{})
	for _, o := range s.catalog.Orders {
		cents += parseCents(string(o.Total))
		customers[o.Billing.Email] = struct{}{}
		for _, li := range o.LineItems {
			items += int(li.Quantity)
		}
	}
	orders := len(s.catalog.Orders)
	avg := 0
	if orders > 0 {
		avg = cents / orders
	}
	writeJSON(w, []woo.SalesReportDTO{{
		TotalSales:     price(cents),
		NetSales:       price(cents),
		AverageSales:   price(avg),
		TotalOrders:    woo.FlexInt(orders),
		TotalItems:     woo.FlexInt(items),
		TotalCustomers: woo.FlexInt(len(customers)),
	}})
}

func (s *Server) topSellers(w http.ResponseWriter, _ *http.Request) {
	sold := make(map[int64]int)
	names := make(map[int64]string)
	for _, o := range s.catalog.Orders {
		for _, li := range o.LineItems {
			sold[li.ProductID] += int(li.Quantity)
			names[li.ProductID] = li.Name
		}
	}
	sellers := make([]woo.TopSellerDTO, 0, len(sold))
	for id, qty := range sold {
		sellers = append(sellers, woo.TopSellerDTO{Title: names[id], ProductID: id, Quantity: woo.FlexInt(qty)})
	}
	slices.SortFunc(sellers, func(a, b woo.TopSellerDTO) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	writeJSON(w, sellers)
}
