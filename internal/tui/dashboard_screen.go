package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wooterm/internal/dashboard"
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/tui/components"
	"github.com/mmcdole/wooterm/internal/tui/styles"
)

// DashboardScreen shows store stats, the new orders count and top performers
type DashboardScreen struct {
	id       uint64
	svc      *dashboard.Service
	snapshot *domain.DashboardSnapshot

	width   int
	height  int
	focused bool

	loading bool
	err     error

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDashboardScreen(id uint64, svc *dashboard.Service) *DashboardScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &DashboardScreen{id: id, svc: svc, ctx: ctx, cancel: cancel}
	if cached, ok := svc.Cached(); ok {
		s.snapshot = cached
	}
	return s
}

func (s *DashboardScreen) ID() uint64                       { return s.id }
func (s *DashboardScreen) Title() string                    { return "Dashboard" }
func (s *DashboardScreen) SetSize(width, height int)        { s.width, s.height = width, height }
func (s *DashboardScreen) SetFocused(focused bool)          { s.focused = focused }
func (s *DashboardScreen) Selected() (components.Row, bool) { return components.Row{}, false }
func (s *DashboardScreen) Capturing() bool                  { return false }
func (s *DashboardScreen) IsFiltering() bool                { return false }
func (s *DashboardScreen) StartFilter() tea.Cmd             { return nil }
func (s *DashboardScreen) Init() tea.Cmd                    { return s.Refresh() }
func (s *DashboardScreen) Close()                           { s.cancel() }

// Refresh reloads every dashboard section
func (s *DashboardScreen) Refresh() tea.Cmd {
	if s.loading {
		return nil
	}
	s.loading = true
	ctx, svc, id := s.ctx, s.svc, s.id
	return func() tea.Msg {
		snapshot, err := svc.Reload(ctx)
		return dashboardLoadedMsg{ScreenID: id, Snapshot: snapshot, Err: err}
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(dashboardLoadedMsg); ok {
		s.loading = false
		s.err = msg.Err
		if msg.Err == nil {
			s.snapshot = msg.Snapshot
		}
	}
	return nil
}

func (s *DashboardScreen) View(spinner string) string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	inner := max(s.width-frameW, 20)

	var b strings.Builder
	title := fmt.Sprintf("This %s", s.svc.Period())
	if s.loading {
		title += " " + styles.SpinnerStyle.Render(spinner)
	}
	b.WriteString(styles.AccentStyle.Render(title) + "\n\n")

	switch {
	case s.snapshot == nil && s.loading:
		b.WriteString(styles.DimStyle.Render("Loading store stats..."))
	case s.snapshot == nil:
		b.WriteString(styles.DimStyle.Render("No stats yet · r to reload"))
	default:
		b.WriteString(renderSnapshot(s.snapshot, inner))
	}

	if s.err != nil {
		b.WriteString("\n\n" + styles.NoticeStyle.Render("Unable to reload dashboard · r to retry"))
	}

	return style.
		Width(max(s.width-frameW, 0)).
		Height(max(s.height-frameH, 0)).
		Render(b.String())
}

func renderSnapshot(snap *domain.DashboardSnapshot, width int) string {
	stat := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.DimStyle.Render(label),
			styles.TitleStyle.Render(value),
		)
	}
	cell := lipgloss.NewStyle().Width(max(width/4, 12))
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		cell.Render(stat("Revenue", "$"+valueOr(snap.Stats.TotalSales, "0"))),
		cell.Render(stat("Orders", fmt.Sprint(snap.Stats.TotalOrders))),
		cell.Render(stat("Items sold", fmt.Sprint(snap.Stats.TotalItems))),
		cell.Render(stat("New orders", fmt.Sprint(snap.NewOrders))),
	)

	var b strings.Builder
	b.WriteString(stats + "\n\n")
	b.WriteString(styles.AccentStyle.Render("Top performers") + "\n")
	if len(snap.TopPerformers) == 0 {
		b.WriteString(styles.DimStyle.Render("No sales in this period") + "\n")
	}
	for i, p := range snap.TopPerformers {
		line := fmt.Sprintf("%d. %s", i+1, styles.Truncate(p.Name, width-16))
		b.WriteString(styles.SubtitleStyle.Render(line))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d sold", p.Quantity)) + "\n")
	}
	if !snap.UpdatedAt.IsZero() {
		b.WriteString("\n" + styles.DimStyle.Render("Updated "+snap.UpdatedAt.Local().Format(time.Kitchen)))
	}
	return b.String()
}
