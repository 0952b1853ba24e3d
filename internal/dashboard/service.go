// Package dashboard reloads the store summary shown on the first tab.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/telemetry"
)

const (
	DefaultPeriod   = "week"
	topPerformers   = 5
	newOrdersStatus = "processing"
)

// Service fetches stats, the new orders count and top performers in parallel
// and caches them as one snapshot.
type Service struct {
	reports domain.ReportClient
	orders  domain.OrderClient
	store   domain.Store
	siteID  int64
	period  string
	logger  *slog.Logger
	metrics *telemetry.SyncMetrics
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPeriod sets the report period (day, week, month, year)
func WithPeriod(period string) Option {
	return func(s *Service) {
		if period != "" {
			s.period = period
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a dashboard service for one site
func NewService(reports domain.ReportClient, orders domain.OrderClient, store domain.Store, siteID int64, opts ...Option) *Service {
	s := &Service{
		reports: reports,
		orders:  orders,
		store:   store,
		siteID:  siteID,
		period:  DefaultPeriod,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Period() string { return s.period }

// Reload refreshes every dashboard section. The first failure cancels the
// remaining requests and the cached snapshot is left untouched.
func (s *Service) Reload(ctx context.Context) (*domain.DashboardSnapshot, error) {
	start := time.Now()
	defer func() { s.metrics.RecordReload(time.Since(start)) }()

	var (
		stats     *domain.StoreStats
		newOrders int
		top       []domain.TopPerformer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.reports.GetStoreStats(gctx, s.period)
		return err
	})
	g.Go(func() error {
		var err error
		_, newOrders, err = s.orders.GetOrders(gctx, newOrdersStatus, 1, 1)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.reports.GetTopPerformers(gctx, s.period, topPerformers)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to reload dashboard", "error", err, "period", s.period)
		return nil, err
	}

	snapshot := &domain.DashboardSnapshot{
		NewOrders:     newOrders,
		TopPerformers: top,
		UpdatedAt:     s.now().UTC(),
	}
	if stats != nil {
		snapshot.Stats = *stats
	}
	if err := s.store.SaveDashboard(s.siteID, snapshot); err != nil {
		s.logger.Error("failed to save dashboard", "error", err)
	}
	s.logger.Debug("reloaded dashboard", "newOrders", newOrders, "topPerformers", len(top))
	return snapshot, nil
}

// Cached returns the last saved snapshot, if any
func (s *Service) Cached() (*domain.DashboardSnapshot, bool) {
	return s.store.GetDashboard(s.siteID)
}
