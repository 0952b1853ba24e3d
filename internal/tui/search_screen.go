package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/search"
	"github.com/mmcdole/wooterm/internal/tui/components"
)

// SearchScreen shows server-side product matches ranked locally, followed
// by cached orders matching the same query
type SearchScreen struct {
	id    uint64
	query string
	svc   *search.Service
	list  *components.RowList

	loading bool
	err     error

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSearchScreen(id uint64, query string, svc *search.Service) *SearchScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchScreen{
		id:     id,
		query:  query,
		svc:    svc,
		list:   components.NewRowList(fmt.Sprintf("Search %q", query)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *SearchScreen) ID() uint64                       { return s.id }
func (s *SearchScreen) Title() string                    { return s.list.Title() }
func (s *SearchScreen) SetSize(width, height int)        { s.list.SetSize(width, height) }
func (s *SearchScreen) SetFocused(focused bool)          { s.list.SetFocused(focused) }
func (s *SearchScreen) Selected() (components.Row, bool) { return s.list.Selected() }
func (s *SearchScreen) Capturing() bool                  { return s.list.IsFilterTyping() }
func (s *SearchScreen) IsFiltering() bool                { return s.list.IsFiltering() }
func (s *SearchScreen) StartFilter() tea.Cmd             { return s.list.StartFilter() }
func (s *SearchScreen) Init() tea.Cmd                    { return s.Refresh() }
func (s *SearchScreen) Close()                           { s.cancel() }

func (s *SearchScreen) Refresh() tea.Cmd {
	s.loading = true
	s.err = nil
	ctx, svc, id, query := s.ctx, s.svc, s.id, s.query
	return func() tea.Msg {
		products, err := svc.SearchProducts(ctx, query)
		var matchedOrders []search.Result
		for _, r := range svc.FilterLocal(query) {
			if r.Kind == search.KindOrder {
				matchedOrders = append(matchedOrders, r)
			}
		}
		return searchResultsMsg{ScreenID: id, Query: query, Products: products, Orders: matchedOrders, Err: err}
	}
}

func (s *SearchScreen) Retry() tea.Cmd {
	if s.err == nil {
		return nil
	}
	return s.Refresh()
}

func (s *SearchScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchResultsMsg:
		s.loading = false
		s.err = msg.Err
		s.list.SetRows(searchRows(msg.Products, msg.Orders))
		return nil
	default:
		_, cmd := s.list.Update(msg)
		return cmd
	}
}

func (s *SearchScreen) View(spinner string) string {
	d := components.Decoration{Empty: "No matches"}
	if s.loading {
		d.Spinner = spinner
	}
	if s.err != nil {
		d.Notice = noticeText(s.err)
	}
	return s.list.View(d)
}

func searchRows(products []*domain.Product, matchedOrders []search.Result) []components.Row {
	if len(products) == 0 && len(matchedOrders) == 0 {
		return nil
	}
	rows := []components.Row{{Kind: components.RowHeader, Title: fmt.Sprintf("Products (%d)", len(products))}}
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	if len(matchedOrders) > 0 {
		rows = append(rows, components.Row{Kind: components.RowHeader, Title: fmt.Sprintf("Cached orders (%d)", len(matchedOrders))})
		for _, r := range matchedOrders {
			rows = append(rows, orderRow(r.Value.(*domain.Order)))
		}
	}
	return rows
}
