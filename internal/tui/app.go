// Package tui is the Bubble Tea front end: one tab per store area, each
// with a stack of screens the user drills into.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wooterm/internal/catalog"
	"github.com/mmcdole/wooterm/internal/dashboard"
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/orders"
	"github.com/mmcdole/wooterm/internal/search"
	"github.com/mmcdole/wooterm/internal/telemetry"
	"github.com/mmcdole/wooterm/internal/tui/styles"
)

// Tab is one top-level area of the app
type Tab int

const (
	TabDashboard Tab = iota
	TabOrders
	TabProducts
	TabReviews
	tabCount
)

var tabNames = [tabCount]string{"Dashboard", "Orders", "Products", "Reviews"}

func (t Tab) String() string { return tabNames[t] }

// ParseTab returns the tab named name (case-insensitive), TabDashboard if unknown
func ParseTab(name string) Tab {
	for i, n := range tabNames {
		if strings.EqualFold(n, name) {
			return Tab(i)
		}
	}
	return TabDashboard
}

// Vertical chrome: tab bar + footer
const chromeHeight = 2

// Deps are the services the screens read from and sync through
type Deps struct {
	Catalog      *catalog.Commands
	CatalogQuery *catalog.Queries
	Orders       *orders.Commands
	OrderQuery   *orders.Queries
	Dashboard    *dashboard.Service
	Search       *search.Service

	StoreName  string
	PageSize   int
	Timeout    time.Duration
	DefaultTab Tab
	Logger     *slog.Logger
	Metrics    *telemetry.SyncMetrics
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps Deps

	tabs        [tabCount]*ScreenStack
	started     [tabCount]bool
	active      Tab
	nextID      *uint64
	spinner     spinner.Model
	help        help.Model
	showHelp    bool
	searchInput textinput.Model
	searching   bool

	statusMsg   string
	statusIsErr bool

	width  int
	height int
	ready  bool
}

// NewModel creates the application model with the root screen of every tab
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: 100 * time.Millisecond}
	sp.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "product name or SKU"
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	if deps.DefaultTab < 0 || deps.DefaultTab >= tabCount {
		deps.DefaultTab = TabDashboard
	}

	var id uint64
	m := Model{
		deps:        deps,
		active:      deps.DefaultTab,
		nextID:      &id,
		spinner:     sp,
		help:        help.New(),
		searchInput: ti,
	}

	m.tabs[TabDashboard] = NewScreenStack(NewDashboardScreen(m.newID(), deps.Dashboard))
	m.tabs[TabOrders] = NewScreenStack(m.newListScreen(orderSource{cmds: deps.Orders, queries: deps.OrderQuery}))
	m.tabs[TabProducts] = NewScreenStack(m.newListScreen(productSource{cmds: deps.Catalog, queries: deps.CatalogQuery}))
	m.tabs[TabReviews] = NewScreenStack(m.newListScreen(reviewSource{cmds: deps.Catalog, queries: deps.CatalogQuery}))
	m.started[m.active] = true
	return m
}

func (m Model) newID() uint64 {
	*m.nextID++
	return *m.nextID
}

func (m Model) newListScreen(source ListSource) *ListScreen {
	return NewListScreen(m.newID(), source, ListOptions{
		PageSize: m.deps.PageSize,
		Timeout:  m.deps.Timeout,
		Logger:   m.deps.Logger,
		Metrics:  m.deps.Metrics,
	})
}

// Init starts the spinner and the default tab
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tabs[m.active].Root().Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.help.Width = msg.Width
		for _, stack := range m.tabs {
			stack.SetSizes(m.width, m.contentHeight())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageSyncedMsg:
		return m, m.routeToScreen(msg.ScreenID, msg, msg.Err)
	case dashboardLoadedMsg:
		return m, m.routeToScreen(msg.ScreenID, msg, msg.Err)
	case orderLoadedMsg:
		return m, m.routeToScreen(msg.ScreenID, msg, msg.Err)
	case searchResultsMsg:
		return m, m.routeToScreen(msg.ScreenID, msg, msg.Err)

	case StatusMsg:
		m.statusMsg = msg.Message
		m.statusIsErr = msg.IsError
		return m, ClearStatusCmd(statusTimeout)

	case ClearStatusMsg:
		m.statusMsg = ""
		m.statusIsErr = false
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, m.top().Update(msg)
}

// routeToScreen delivers a result to the screen that requested it. Results
// for closed screens are dropped.
func (m *Model) routeToScreen(id uint64, msg tea.Msg, err error) tea.Cmd {
	for _, stack := range m.tabs {
		if screen := stack.Find(id); screen != nil {
			cmd := screen.Update(msg)
			if err != nil && !errors.Is(err, context.Canceled) {
				m.deps.Logger.Warn("screen request failed", "screen", screen.Title(), "error", err)
				return tea.Batch(cmd, StatusCmd(statusText(err), true))
			}
			return cmd
		}
	}
	m.deps.Logger.Debug("dropping result for closed screen", "screenID", id)
	return nil
}

func statusText(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		return "The store rejected the API credentials"
	case errors.Is(err, domain.ErrServerOffline):
		return "The store is unreachable"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found on the store"
	default:
		return err.Error()
	}
}

func (m Model) top() Screen {
	return m.tabs[m.active].Top()
}

func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.showHelp = false
		}
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	screen := m.top()
	if screen.Capturing() {
		return m, screen.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		for _, stack := range m.tabs {
			stack.CloseAll()
		}
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, Keys.NextTab):
		return m.switchTab((m.active + 1) % tabCount)
	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab((m.active + tabCount - 1) % tabCount)
	case key.Matches(msg, Keys.Tab1):
		return m.switchTab(TabDashboard)
	case key.Matches(msg, Keys.Tab2):
		return m.switchTab(TabOrders)
	case key.Matches(msg, Keys.Tab3):
		return m.switchTab(TabProducts)
	case key.Matches(msg, Keys.Tab4):
		return m.switchTab(TabReviews)
	case key.Matches(msg, Keys.Refresh):
		return m, screen.Refresh()
	case key.Matches(msg, Keys.Retry):
		if r, ok := screen.(retrier); ok {
			return m, r.Retry()
		}
		return m, nil
	case key.Matches(msg, Keys.Filter):
		return m, screen.StartFilter()
	case key.Matches(msg, Keys.Search):
		if m.deps.Search == nil {
			return m, nil
		}
		m.searching = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	case key.Matches(msg, Keys.Back):
		if screen.IsFiltering() {
			return m, screen.Update(tea.KeyMsg{Type: tea.KeyEsc})
		}
		if msg.String() == "esc" && !m.tabs[m.active].CanGoBack() {
			return m, nil
		}
		m.tabs[m.active].Pop()
		return m, nil
	case key.Matches(msg, Keys.Enter):
		return m.drillIn()
	}

	return m, screen.Update(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.searchInput.Value())
		m.searching = false
		m.searchInput.Blur()
		if query == "" {
			return m, nil
		}
		start := m.activate(TabProducts)
		return m, tea.Batch(start, m.push(NewSearchScreen(m.newID(), query, m.deps.Search)))
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	cmd := m.activate(tab)
	return m, cmd
}

// activate focuses tab, starting its root screen on first visit
func (m *Model) activate(tab Tab) tea.Cmd {
	m.active = tab
	if m.started[tab] {
		return nil
	}
	m.started[tab] = true
	return m.tabs[tab].Root().Init()
}

// drillIn opens the detail screen for the selected row
func (m Model) drillIn() (tea.Model, tea.Cmd) {
	row, ok := m.top().Selected()
	if !ok || !row.Selectable() {
		return m, nil
	}

	switch v := row.Value.(type) {
	case *domain.Product:
		if v.ProductType() != domain.ProductTypeVariable {
			return m, StatusCmd(v.Name+" has no variations", false)
		}
		source := variationSource{product: v, cmds: m.deps.Catalog, queries: m.deps.CatalogQuery}
		start := m.activate(TabProducts)
		return m, tea.Batch(start, m.push(m.newListScreen(source)))
	case *domain.Order:
		start := m.activate(TabOrders)
		return m, tea.Batch(start, m.push(NewOrderScreen(m.newID(), v, m.deps.Orders, m.deps.OrderQuery)))
	}
	return m, nil
}

func (m Model) push(screen Screen) tea.Cmd {
	screen.SetSize(m.width, m.contentHeight())
	m.tabs[m.active].Push(screen)
	return screen.Init()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	body := m.top().View(m.spinner.View())
	if m.searching {
		modal := styles.ModalStyle.Width(min(60, m.width-4)).Render(
			styles.ModalTitleStyle.Render("Search products") + "\n" + m.searchInput.View(),
		)
		body = lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, modal)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), body, m.renderFooter())
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, tabCount+1)
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d %s", int(i)+1, i)
		if i == m.active {
			parts = append(parts, styles.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, styles.InactiveTabStyle.Render(label))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	crumb := strings.Join(m.tabs[m.active].Breadcrumb()[1:], " > ")
	right := styles.DimStyle.Render(m.deps.StoreName)
	if crumb != "" {
		right = styles.AccentStyle.Render(crumb)
	}
	gap := max(m.width-lipgloss.Width(tabs)-lipgloss.Width(right)-1, 1)
	return tabs + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	var left string
	if m.statusMsg != "" {
		if m.statusIsErr {
			left = styles.ErrorStyle.Render(m.statusMsg)
		} else {
			left = styles.DimStyle.Render(m.statusMsg)
		}
	}
	right := m.help.ShortHelpView(Keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	body := styles.ModalTitleStyle.Render("Keys") + "\n" + m.help.FullHelpView(Keys.FullHelp()) +
		"\n\n" + styles.DimStyle.Render("j/k move · g/G top/bottom · C-d/C-u half page · esc closes help")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(body))
}

// ActiveTab returns the focused tab
func (m Model) ActiveTab() Tab { return m.active }

// Top returns the focused screen of the active tab
func (m Model) Top() Screen { return m.top() }

var _ Screen = (*ListScreen)(nil)
var _ Screen = (*OrderScreen)(nil)
var _ Screen = (*SearchScreen)(nil)
var _ Screen = (*DashboardScreen)(nil)
