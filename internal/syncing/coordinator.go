// Package syncing decides which page of a paginated remote list to fetch
// next and tracks the coarse state of the screen showing it.
//
// A Coordinator and its StateMachine are owned by one goroutine (the UI
// update loop). Nothing here takes a lock: the one-fetch-per-page rule is
// enforced by set membership, and fetch completions must be delivered back
// to the owning goroutine before they are applied.
package syncing

import (
	"log/slog"
	"time"
	"weak"

	"github.com/mmcdole/wooterm/internal/telemetry"
)

const (
	// PageFirstIndex is the number of the first page
	PageFirstIndex = 1

	// DefaultPageSize is used when no page size is configured
	DefaultPageSize = 25
)

// PageRequest identifies one page of a paginated list
type PageRequest struct {
	PageNumber int
	PageSize   int
}

// Offset returns the zero-based index of the first item in the page
func (r PageRequest) Offset() int {
	return (r.PageNumber - PageFirstIndex) * r.PageSize
}

// Delegate performs the remote fetch for one page.
// Implementations must call onCompletion exactly once, on the goroutine
// that owns the Coordinator. The error is not interpreted by the Coordinator.
type Delegate interface {
	Sync(req PageRequest, onCompletion func(err error))
}

// DelegateFunc adapts a function to the Delegate interface
type DelegateFunc func(req PageRequest, onCompletion func(err error))

// Sync calls f(req, onCompletion)
func (f DelegateFunc) Sync(req PageRequest, onCompletion func(err error)) {
	f(req, onCompletion)
}

// Coordinator keeps track of which pages have been requested and synced,
// and encapsulates the "what should we sync now" logic.
type Coordinator struct {
	name     string
	pageSize int
	delegate Delegate
	pages    *pageTracker
	logger   *slog.Logger
	metrics  *telemetry.SyncMetrics

	closed bool
	self   weak.Pointer[Coordinator]
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithPageSize sets the page size. Non-positive values are ignored.
func WithPageSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithName sets the list name used in logs and metrics
func WithName(name string) Option {
	return func(c *Coordinator) {
		c.name = name
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the sync metrics. A nil value disables metrics.
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// New creates a Coordinator that fetches pages through delegate
func New(delegate Delegate, opts ...Option) *Coordinator {
	c := &Coordinator{
		name:     "list",
		pageSize: DefaultPageSize,
		delegate: delegate,
		pages:    newPageTracker(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.self = weak.Make(c)
	return c
}

// PageSize returns the fixed page size of this coordinator
func (c *Coordinator) PageSize() int {
	return c.pageSize
}

// HighestPageBeingSynced returns the highest page number in flight.
// The second value is false when nothing is in flight.
func (c *Coordinator) HighestPageBeingSynced() (int, bool) {
	return c.pages.highest()
}

// IsPageSynced reports whether page has been fetched successfully since the last resync
func (c *Coordinator) IsPageSynced(page int) bool {
	return c.pages.isSynced(page)
}

// IsPageInFlight reports whether a fetch for page is outstanding
func (c *Coordinator) IsPageInFlight(page int) bool {
	return c.pages.isInFlight(page)
}

// SynchronizeFirstPage drops all tracking state and fetches the first page.
// It always issues a fetch, even if the first page was synced before.
// onCompletion, if non-nil, receives whether the fetch succeeded.
func (c *Coordinator) SynchronizeFirstPage(onCompletion func(ok bool)) {
	if c.closed {
		return
	}
	c.pages.reset()
	c.logger.Debug("resynchronizing from first page", "list", c.name)
	c.synchronize(PageFirstIndex, onCompletion)
}

// EnsureNextPageIsSynchronized is called with the index of the item about
// to become visible. When that item is the last one of its page, the
// following page is requested, unless it is already in flight or synced.
// Returns true if a fetch was issued.
func (c *Coordinator) EnsureNextPageIsSynchronized(lastVisibleIndex int) bool {
	if c.closed || lastVisibleIndex < 0 {
		return false
	}

	page := c.pageNumber(lastVisibleIndex + 1)
	if c.pages.isSynced(page) {
		return false
	}
	return c.synchronize(page, nil)
}

// SynchronizePage fetches page unless a fetch for it is already in flight.
// Used to retry a page whose previous fetch failed.
func (c *Coordinator) SynchronizePage(page int) bool {
	if c.closed || page < PageFirstIndex {
		return false
	}
	return c.synchronize(page, nil)
}

// Close detaches the coordinator. Completions of fetches still in flight
// become no-ops and no new fetches are issued.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.pages.reset()
	c.logger.Debug("sync coordinator closed", "list", c.name)
}

// pageNumber returns the page that contains the item at index
func (c *Coordinator) pageNumber(index int) int {
	return index/c.pageSize + PageFirstIndex
}

func (c *Coordinator) synchronize(page int, onCompletion func(ok bool)) bool {
	if !c.pages.begin(page) {
		c.metrics.RecordDuplicateSuppressed(c.name)
		return false
	}

	req := PageRequest{PageNumber: page, PageSize: c.pageSize}
	epoch := c.pages.epoch
	started := time.Now()
	self := c.self
	fired := false

	c.metrics.RecordPageRequested(c.name)
	c.logger.Debug("syncing page", "list", c.name, "page", page, "pageSize", c.pageSize)

	c.delegate.Sync(req, func(err error) {
		if fired {
			return
		}
		fired = true

		owner := self.Value()
		if owner == nil || owner.closed {
			return
		}
		owner.complete(req, epoch, started, err)
		if onCompletion != nil {
			onCompletion(err == nil)
		}
	})
	return true
}

func (c *Coordinator) complete(req PageRequest, epoch uint64, started time.Time, err error) {
	if !c.pages.finish(req.PageNumber, epoch, err == nil) {
		c.logger.Debug("completion predates resync, tracking unchanged",
			"list", c.name, "page", req.PageNumber)
	}
	c.metrics.RecordPageCompleted(c.name, time.Since(started), err)

	if err != nil {
		c.logger.Warn("page sync failed", "list", c.name, "page", req.PageNumber, "error", err)
		return
	}
	c.logger.Debug("page synced", "list", c.name, "page", req.PageNumber)
}
