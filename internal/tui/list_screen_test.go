package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/syncing"
	"github.com/mmcdole/wooterm/internal/tui/components"
)

// fakeSource serves total rows from a remote it pretends to page through
type fakeSource struct {
	mu     sync.Mutex
	total  int
	loaded int
	fail   map[int]error
	loads  []int
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{total: total, fail: make(map[int]error)}
}

func (f *fakeSource) Title() string { return "Things" }

func (f *fakeSource) Load(ctx context.Context, req syncing.PageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, req.PageNumber)
	if err := f.fail[req.PageNumber]; err != nil {
		return err
	}
	if req.PageNumber == 1 {
		f.loaded = 0
	}
	f.loaded = max(f.loaded, min(req.PageNumber*req.PageSize, f.total))
	return nil
}

func (f *fakeSource) Rows() []components.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]components.Row, f.loaded)
	for i := range rows {
		rows[i] = components.Row{Kind: components.RowProduct, ID: int64(i + 1), Title: fmt.Sprintf("thing %d", i+1)}
	}
	return rows
}

func (f *fakeSource) Results() syncing.Results { return fakeResults{f} }

func (f *fakeSource) setFail(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, page)
		return
	}
	f.fail[page] = err
}

type fakeResults struct{ f *fakeSource }

func (r fakeResults) Count() int {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.loaded
}

func (r fakeResults) IsEmpty() bool { return r.Count() == 0 }

func newTestListScreen(src *fakeSource) *ListScreen {
	s := NewListScreen(1, src, ListOptions{
		PageSize: 25,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.SetSize(80, 40)
	return s
}

// collect runs cmd and any batched cmds, returning the messages they produce
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds page results back into the screen until no fetch is pending
func pump(s *ListScreen, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		if synced, ok := msg.(pageSyncedMsg); ok {
			pump(s, s.Update(synced))
		}
	}
}

func keyPress(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestListScreen_FirstPageShowsGhostRows(t *testing.T) {
	src := newFakeSource(60)
	s := newTestListScreen(src)

	cmd := s.Init()
	assert.Equal(t, syncing.SyncingState(1), s.State())
	assert.Contains(t, s.View(""), "░")

	pump(s, cmd)
	assert.Equal(t, syncing.StateResults, s.State().Kind)
	assert.Equal(t, 25, s.list.Len())
	assert.NotContains(t, s.View(""), "░")
	assert.Contains(t, s.View(""), "thing 1")
}

func TestListScreen_LastRowOfPageFetchesNext(t *testing.T) {
	src := newFakeSource(60)
	s := newTestListScreen(src)
	pump(s, s.Init())

	// moving within the first page fetches nothing
	assert.Nil(t, s.Update(keyPress("j")))

	cmd := s.Update(keyPress("G"))
	require.NotNil(t, cmd)
	assert.Equal(t, 24, s.list.Cursor())
	assert.Equal(t, syncing.SyncingState(2), s.State())
	assert.Contains(t, s.View("*"), "Loading more")
	assert.Contains(t, s.View("*"), "thing 1", "rows stay visible while later pages load")

	pump(s, cmd)
	assert.Equal(t, 50, s.list.Len())
	assert.Equal(t, syncing.StateResults, s.State().Kind)
	assert.NotContains(t, s.View("*"), "Loading more")
	assert.Equal(t, []int{1, 2}, src.loads)
}

func TestListScreen_DuplicatePrefetchSuppressed(t *testing.T) {
	src := newFakeSource(60)
	s := newTestListScreen(src)
	pump(s, s.Init())

	first := s.Update(keyPress("G"))
	require.NotNil(t, first)
	s.Update(keyPress("k"))
	assert.Nil(t, s.Update(keyPress("j")), "page 2 is already in flight")

	pump(s, first)
	assert.Equal(t, []int{1, 2}, src.loads)
}

func TestListScreen_FailureShowsNoticeAndRetry(t *testing.T) {
	src := newFakeSource(60)
	src.setFail(1, fmt.Errorf("list products: %w", domain.ErrServerOffline))
	s := newTestListScreen(src)

	pump(s, s.Init())
	assert.Equal(t, 1, s.FailedPage())
	assert.ErrorIs(t, s.Err(), domain.ErrServerOffline)
	assert.Equal(t, syncing.StateNoResultsPlaceholder, s.State().Kind)
	assert.Contains(t, s.View(""), "Unable to refresh list (store unreachable) · R to retry")

	src.setFail(1, nil)
	pump(s, s.Retry())
	assert.Equal(t, 0, s.FailedPage())
	assert.NoError(t, s.Err())
	assert.Equal(t, 25, s.list.Len())
	assert.NotContains(t, s.View(""), "Unable to refresh list")
}

func TestListScreen_RetryWithoutFailureIsNoop(t *testing.T) {
	s := newTestListScreen(newFakeSource(10))
	pump(s, s.Init())
	assert.Nil(t, s.Retry())
}

func TestListScreen_CanceledLoadShowsNoNotice(t *testing.T) {
	src := newFakeSource(10)
	src.setFail(1, context.Canceled)
	s := newTestListScreen(src)

	pump(s, s.Init())
	assert.Equal(t, 0, s.FailedPage())
}

func TestListScreen_RefreshRefetchesFirstPage(t *testing.T) {
	src := newFakeSource(60)
	s := newTestListScreen(src)
	pump(s, s.Init())
	pump(s, s.Update(keyPress("G")))

	cmd := s.Refresh()
	require.NotNil(t, cmd)
	assert.Equal(t, syncing.SyncingState(1), s.State())
	pump(s, cmd)
	assert.Equal(t, 25, s.list.Len())
	assert.Equal(t, []int{1, 2, 1}, src.loads)
}

func TestListScreen_CloseDropsLateResults(t *testing.T) {
	src := newFakeSource(60)
	s := newTestListScreen(src)

	cmd := s.Init()
	s.Close()
	msgs := collect(cmd)
	require.Len(t, msgs, 1)

	assert.Nil(t, s.Update(msgs[0]))
	assert.Equal(t, 0, s.list.Len())
	assert.False(t, s.Coordinator().SynchronizePage(2))
}
