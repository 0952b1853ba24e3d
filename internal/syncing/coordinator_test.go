package syncing

import (
	"errors"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/telemetry"
)

var errOffline = errors.New("offline")

// fakeDelegate records requests and holds their completions until the test releases them
type fakeDelegate struct {
	requests []PageRequest
	pending  map[int][]func(error)
}

func newFakeDelegate() *fakeDelegate {
	return &fakeDelegate{pending: make(map[int][]func(error))}
}

func (d *fakeDelegate) Sync(req PageRequest, onCompletion func(err error)) {
	d.requests = append(d.requests, req)
	d.pending[req.PageNumber] = append(d.pending[req.PageNumber], onCompletion)
}

func (d *fakeDelegate) complete(t *testing.T, page int, err error) {
	t.Helper()
	callbacks := d.pending[page]
	require.NotEmpty(t, callbacks, "no fetch pending for page %d", page)
	d.pending[page] = callbacks[1:]
	callbacks[0](err)
}

func (d *fakeDelegate) pages() []int {
	pages := make([]int, 0, len(d.requests))
	for _, r := range d.requests {
		pages = append(pages, r.PageNumber)
	}
	return pages
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(d Delegate, opts ...Option) *Coordinator {
	return New(d, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{PageNumber: 1, PageSize: 25}.Offset())
	assert.Equal(t, 50, PageRequest{PageNumber: 3, PageSize: 25}.Offset())
}

func TestNew_Defaults(t *testing.T) {
	c := newTestCoordinator(newFakeDelegate())
	assert.Equal(t, DefaultPageSize, c.PageSize())

	c = newTestCoordinator(newFakeDelegate(), WithPageSize(0))
	assert.Equal(t, DefaultPageSize, c.PageSize())

	c = newTestCoordinator(newFakeDelegate(), WithPageSize(10))
	assert.Equal(t, 10, c.PageSize())
}

func TestEnsureNextPageIsSynchronized_PageComputation(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		wantPage int
	}{
		{"first item", 0, 1},
		{"middle of first page", 10, 1},
		{"second to last of first page", 23, 1},
		{"last of first page", 24, 2},
		{"first of second page", 25, 2},
		{"last of second page", 49, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDelegate()
			c := newTestCoordinator(d)

			assert.True(t, c.EnsureNextPageIsSynchronized(tt.index))
			assert.Equal(t, []int{tt.wantPage}, d.pages())
		})
	}
}

func TestEnsureNextPageIsSynchronized_NegativeIndex(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	assert.False(t, c.EnsureNextPageIsSynchronized(-1))
	assert.Empty(t, d.requests)
}

func TestEnsureNextPageIsSynchronized_DedupWhileInFlight(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	// Non-decreasing calls within one page issue a single fetch
	for i := 0; i < 24; i++ {
		c.EnsureNextPageIsSynchronized(i)
	}
	assert.Equal(t, []int{1}, d.pages())

	assert.True(t, c.EnsureNextPageIsSynchronized(24))
	assert.False(t, c.EnsureNextPageIsSynchronized(25))
	assert.False(t, c.EnsureNextPageIsSynchronized(30))
	assert.Equal(t, []int{1, 2}, d.pages())
}

func TestEnsureNextPageIsSynchronized_SyncedPageNotRefetched(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	c.SynchronizeFirstPage(nil)
	d.complete(t, 1, nil)
	require.True(t, c.IsPageSynced(1))

	assert.False(t, c.EnsureNextPageIsSynchronized(10))
	assert.Equal(t, []int{1}, d.pages())
}

func TestEnsureNextPageIsSynchronized_FailedPageRefetched(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	c.SynchronizeFirstPage(nil)
	d.complete(t, 1, nil)

	require.True(t, c.EnsureNextPageIsSynchronized(24))
	d.complete(t, 2, errOffline)
	assert.False(t, c.IsPageSynced(2))
	assert.False(t, c.IsPageInFlight(2))

	assert.True(t, c.EnsureNextPageIsSynchronized(24))
	assert.Equal(t, []int{1, 2, 2}, d.pages())
}

func TestEnsureNextPageIsSynchronized_BeyondKnownPages(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	assert.True(t, c.EnsureNextPageIsSynchronized(200))
	assert.Equal(t, []int{9}, d.pages())
}

func TestSynchronizeFirstPage_AlwaysFetches(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	var results []bool
	c.SynchronizeFirstPage(func(ok bool) { results = append(results, ok) })
	d.complete(t, 1, nil)
	c.EnsureNextPageIsSynchronized(24)
	d.complete(t, 2, nil)

	c.SynchronizeFirstPage(func(ok bool) { results = append(results, ok) })
	assert.Equal(t, []int{1, 2, 1}, d.pages())
	assert.False(t, c.IsPageSynced(1))
	assert.False(t, c.IsPageSynced(2))

	d.complete(t, 1, errOffline)
	assert.Equal(t, []bool{true, false}, results)
}

func TestSynchronizeFirstPage_StaleCompletionDoesNotMutateTracking(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	c.SynchronizeFirstPage(nil)
	d.complete(t, 1, nil)
	require.True(t, c.EnsureNextPageIsSynchronized(24))

	var firstResult []bool
	c.SynchronizeFirstPage(func(ok bool) { firstResult = append(firstResult, ok) })

	// Page 2 was issued before the reset; its success must not mark it synced
	d.complete(t, 2, nil)
	assert.False(t, c.IsPageSynced(2))

	d.complete(t, 1, nil)
	assert.True(t, c.IsPageSynced(1))
	assert.Equal(t, []bool{true}, firstResult)

	assert.True(t, c.EnsureNextPageIsSynchronized(24))
	assert.Equal(t, []int{1, 2, 1, 2}, d.pages())
}

func TestSynchronizeFirstPage_WhileFirstPageInFlight(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	c.SynchronizeFirstPage(nil)
	c.SynchronizeFirstPage(nil)
	assert.Equal(t, []int{1, 1}, d.pages())

	// The older completion is stale and leaves page 1 in flight
	d.complete(t, 1, nil)
	assert.True(t, c.IsPageInFlight(1))
	assert.False(t, c.IsPageSynced(1))

	d.complete(t, 1, nil)
	assert.False(t, c.IsPageInFlight(1))
	assert.True(t, c.IsPageSynced(1))
}

func TestSynchronizePage_Retry(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	assert.False(t, c.SynchronizePage(0))

	require.True(t, c.SynchronizePage(3))
	assert.False(t, c.SynchronizePage(3), "in-flight page must not be fetched twice")

	d.complete(t, 3, errOffline)
	assert.True(t, c.SynchronizePage(3))
	assert.Equal(t, []int{3, 3}, d.pages())
}

func TestHighestPageBeingSynced(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	_, ok := c.HighestPageBeingSynced()
	assert.False(t, ok)

	c.SynchronizeFirstPage(nil)
	c.EnsureNextPageIsSynchronized(24)
	c.EnsureNextPageIsSynchronized(49)

	highest, ok := c.HighestPageBeingSynced()
	require.True(t, ok)
	assert.Equal(t, 3, highest)

	d.complete(t, 3, nil)
	highest, ok = c.HighestPageBeingSynced()
	require.True(t, ok)
	assert.Equal(t, 2, highest)
}

func TestDelegateCompletionCalledTwice(t *testing.T) {
	var calls int
	var saved func(error)
	d := DelegateFunc(func(_ PageRequest, onCompletion func(error)) {
		saved = onCompletion
	})
	c := newTestCoordinator(d)

	c.SynchronizeFirstPage(func(bool) { calls++ })
	saved(nil)
	saved(errOffline)

	assert.Equal(t, 1, calls)
	assert.True(t, c.IsPageSynced(1))
}

func TestSynchronousDelegate(t *testing.T) {
	var pages []int
	d := DelegateFunc(func(req PageRequest, onCompletion func(error)) {
		pages = append(pages, req.PageNumber)
		onCompletion(nil)
	})
	c := newTestCoordinator(d, WithPageSize(10))

	c.SynchronizeFirstPage(nil)
	c.EnsureNextPageIsSynchronized(9)
	c.EnsureNextPageIsSynchronized(9)

	assert.Equal(t, []int{1, 2}, pages)
	assert.True(t, c.IsPageSynced(2))
}

func TestClose_LateCompletionIsNoop(t *testing.T) {
	d := newFakeDelegate()
	c := newTestCoordinator(d)

	var called bool
	c.SynchronizeFirstPage(func(bool) { called = true })
	c.Close()

	d.complete(t, 1, nil)
	assert.False(t, called)
	assert.False(t, c.IsPageSynced(1))

	assert.False(t, c.EnsureNextPageIsSynchronized(0))
	assert.False(t, c.SynchronizePage(1))
	c.SynchronizeFirstPage(nil)
	assert.Len(t, d.requests, 1)
}

func TestCompletionAfterCoordinatorCollected(t *testing.T) {
	d := newFakeDelegate()
	called := false

	func() {
		c := newTestCoordinator(d)
		c.SynchronizeFirstPage(func(bool) { called = true })
	}()
	runtime.GC()
	runtime.GC()

	assert.NotPanics(t, func() { d.complete(t, 1, nil) })
	assert.False(t, called)
}

func TestCoordinatorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewSyncMetrics(reg)
	require.NoError(t, err)

	d := newFakeDelegate()
	c := newTestCoordinator(d, WithName("orders"), WithMetrics(metrics))

	c.SynchronizeFirstPage(nil)
	c.EnsureNextPageIsSynchronized(0)
	d.complete(t, 1, nil)

	n, err := testutil.GatherAndCount(reg,
		"wooterm_sync_pages_requested_total",
		"wooterm_sync_duplicates_suppressed_total",
		"wooterm_sync_pages_completed_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
