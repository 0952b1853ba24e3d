package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/syncing"
	"github.com/mmcdole/wooterm/internal/telemetry"
	"github.com/mmcdole/wooterm/internal/tui/components"
)

// ListSource backs a paginated list screen. Load runs off the UI goroutine
// and writes the page to the local cache; Rows and Results only read the cache.
type ListSource interface {
	Title() string
	Load(ctx context.Context, req syncing.PageRequest) error
	Rows() []components.Row
	Results() syncing.Results
}

// ListOptions configures a ListScreen
type ListOptions struct {
	PageSize int
	Timeout  time.Duration // per page, zero for none
	Logger   *slog.Logger
	Metrics  *telemetry.SyncMetrics
}

// ListScreen shows a paginated remote list. It owns one Coordinator and one
// StateMachine and is the Coordinator's Delegate: fetches run as tea.Cmds
// and their completions come back through Update as pageSyncedMsg.
type ListScreen struct {
	id      uint64
	source  ListSource
	list    *components.RowList
	timeout time.Duration
	logger  *slog.Logger

	coordinator *syncing.Coordinator
	machine     *syncing.StateMachine

	ctx    context.Context
	cancel context.CancelFunc

	seq       uint64
	callbacks map[uint64]func(error)
	pending   []tea.Cmd

	ghost         bool
	footerSpinner bool
	failedPage    int
	lastErr       error
}

// NewListScreen creates a list screen. Nothing is fetched before Init.
func NewListScreen(id uint64, source ListSource, opts ListOptions) *ListScreen {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &ListScreen{
		id:        id,
		source:    source,
		list:      components.NewRowList(source.Title()),
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		callbacks: make(map[uint64]func(error)),
	}
	s.coordinator = syncing.New(s,
		syncing.WithPageSize(opts.PageSize),
		syncing.WithName(strings.ToLower(source.Title())),
		syncing.WithLogger(opts.Logger),
		syncing.WithMetrics(opts.Metrics),
	)
	s.machine = syncing.NewStateMachine(source.Results(), syncing.Hooks{
		OnLeaving:  s.onLeaving,
		OnEntering: s.onEntering,
	})
	s.list.SetRows(source.Rows())
	return s
}

func (s *ListScreen) ID() uint64                        { return s.id }
func (s *ListScreen) Title() string                     { return s.source.Title() }
func (s *ListScreen) SetSize(width, height int)         { s.list.SetSize(width, height) }
func (s *ListScreen) SetFocused(focused bool)           { s.list.SetFocused(focused) }
func (s *ListScreen) Selected() (components.Row, bool)  { return s.list.Selected() }
func (s *ListScreen) Capturing() bool                   { return s.list.IsFilterTyping() }
func (s *ListScreen) IsFiltering() bool                 { return s.list.IsFiltering() }
func (s *ListScreen) StartFilter() tea.Cmd              { return s.list.StartFilter() }
func (s *ListScreen) State() syncing.State              { return s.machine.State() }
func (s *ListScreen) Coordinator() *syncing.Coordinator { return s.coordinator }

// FailedPage returns the page shown in the error notice, 0 when none
func (s *ListScreen) FailedPage() int { return s.failedPage }

// Init fetches the first page
func (s *ListScreen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh drops page tracking and fetches the first page again
func (s *ListScreen) Refresh() tea.Cmd {
	s.clearNotice()
	s.coordinator.SynchronizeFirstPage(nil)
	return s.drain()
}

// Retry fetches the page whose failure the notice shows
func (s *ListScreen) Retry() tea.Cmd {
	if s.failedPage == 0 {
		return nil
	}
	page := s.failedPage
	s.clearNotice()
	s.coordinator.SynchronizePage(page)
	return s.drain()
}

// Sync implements syncing.Delegate
func (s *ListScreen) Sync(req syncing.PageRequest, onCompletion func(err error)) {
	s.seq++
	seq := s.seq
	s.callbacks[seq] = onCompletion
	s.machine.TransitionToSyncing(req.PageNumber)
	s.pending = append(s.pending, s.loadCmd(seq, req))
}

func (s *ListScreen) loadCmd(seq uint64, req syncing.PageRequest) tea.Cmd {
	ctx, source, timeout, id := s.ctx, s.source, s.timeout, s.id
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := source.Load(ctx, req)
		return pageSyncedMsg{ScreenID: id, Seq: seq, Page: req.PageNumber, Err: err}
	}
}

func (s *ListScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageSyncedMsg:
		s.onPageSynced(msg)
		return s.drain()
	case tea.KeyMsg:
		moved, cmd := s.list.Update(msg)
		if moved && !s.list.IsFiltering() {
			s.coordinator.EnsureNextPageIsSynchronized(s.list.Cursor())
		}
		return tea.Batch(cmd, s.drain())
	default:
		_, cmd := s.list.Update(msg)
		return cmd
	}
}

func (s *ListScreen) onPageSynced(msg pageSyncedMsg) {
	done, ok := s.callbacks[msg.Seq]
	if !ok {
		return
	}
	delete(s.callbacks, msg.Seq)
	done(msg.Err)

	s.list.SetRows(s.source.Rows())
	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		s.failedPage = msg.Page
		s.lastErr = msg.Err
	} else if msg.Page == s.failedPage {
		s.clearNotice()
	}
	s.machine.TransitionToResultsUpdated()
}

func (s *ListScreen) onLeaving(old syncing.State) {
	if old.Kind == syncing.StateSyncing {
		s.ghost = false
		s.footerSpinner = false
	}
}

func (s *ListScreen) onEntering(state syncing.State) {
	if state.Kind != syncing.StateSyncing {
		return
	}
	if state.IsFirstPage() {
		s.ghost = true
		return
	}
	highest, ok := s.coordinator.HighestPageBeingSynced()
	s.footerSpinner = ok && highest*s.coordinator.PageSize() > s.source.Results().Count()
}

// Err returns the error behind the notice, nil when none
func (s *ListScreen) Err() error {
	if s.failedPage == 0 {
		return nil
	}
	return s.lastErr
}

func (s *ListScreen) clearNotice() {
	s.failedPage = 0
	s.lastErr = nil
}

// drain returns the fetches queued by the coordinator during this update
func (s *ListScreen) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func (s *ListScreen) View(spinner string) string {
	d := components.Decoration{
		Ghost: s.ghost,
		Empty: "No " + strings.ToLower(s.source.Title()) + " yet",
	}
	if s.footerSpinner {
		d.Spinner = spinner
	}
	if s.failedPage > 0 {
		d.Notice = noticeText(s.lastErr)
	}
	return s.list.View(d)
}

func noticeText(err error) string {
	text := "Unable to refresh list"
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		text += " (credentials rejected)"
	case errors.Is(err, domain.ErrServerOffline):
		text += " (store unreachable)"
	}
	return text + " · R to retry"
}

// Close cancels outstanding fetches and detaches the coordinator
func (s *ListScreen) Close() {
	s.cancel()
	s.coordinator.Close()
	clear(s.callbacks)
	s.pending = nil
}
