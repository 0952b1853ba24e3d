package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/orders"
	"github.com/mmcdole/wooterm/internal/tui/components"
)

// OrderScreen shows one order with its customer note, items and refunded products
type OrderScreen struct {
	id      uint64
	orderID int64
	cmds    *orders.Commands
	queries *orders.Queries
	list    *components.RowList

	loading bool
	err     error

	ctx    context.Context
	cancel context.CancelFunc
}

func NewOrderScreen(id uint64, order *domain.Order, cmds *orders.Commands, queries *orders.Queries) *OrderScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &OrderScreen{
		id:      id,
		orderID: order.OrderID,
		cmds:    cmds,
		queries: queries,
		list:    components.NewRowList("Order #" + order.Number),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.list.SetRows(orderDetailRows(order, queries.RefundedProducts(order.OrderID)))
	return s
}

func (s *OrderScreen) ID() uint64                       { return s.id }
func (s *OrderScreen) Title() string                    { return s.list.Title() }
func (s *OrderScreen) SetSize(width, height int)        { s.list.SetSize(width, height) }
func (s *OrderScreen) SetFocused(focused bool)          { s.list.SetFocused(focused) }
func (s *OrderScreen) Selected() (components.Row, bool) { return s.list.Selected() }
func (s *OrderScreen) Capturing() bool                  { return s.list.IsFilterTyping() }
func (s *OrderScreen) IsFiltering() bool                { return s.list.IsFiltering() }
func (s *OrderScreen) StartFilter() tea.Cmd             { return s.list.StartFilter() }

func (s *OrderScreen) Init() tea.Cmd { return s.Refresh() }

// Refresh reloads the order and, when it has refunds, every refund page
func (s *OrderScreen) Refresh() tea.Cmd {
	s.loading = true
	s.err = nil
	ctx, cmds, id, orderID := s.ctx, s.cmds, s.id, s.orderID
	return func() tea.Msg {
		order, err := cmds.SyncOrder(ctx, orderID)
		if err != nil {
			return orderLoadedMsg{ScreenID: id, Err: err}
		}
		var refunded []domain.RefundedProduct
		if len(order.Refunds) > 0 {
			refunds, err := cmds.SyncRefunds(ctx, orderID, nil)
			if err != nil {
				return orderLoadedMsg{ScreenID: id, Order: order, Err: err}
			}
			refunded = orders.RefundedProducts(refunds)
		}
		return orderLoadedMsg{ScreenID: id, Order: order, Refunded: refunded}
	}
}

// Retry reloads after a failure shown in the notice
func (s *OrderScreen) Retry() tea.Cmd {
	if s.err == nil {
		return nil
	}
	return s.Refresh()
}

func (s *OrderScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case orderLoadedMsg:
		s.loading = false
		s.err = msg.Err
		if msg.Order != nil {
			refunded := msg.Refunded
			if msg.Err != nil {
				refunded = s.queries.RefundedProducts(s.orderID)
			}
			s.list.SetRows(orderDetailRows(msg.Order, refunded))
		}
		return nil
	default:
		_, cmd := s.list.Update(msg)
		return cmd
	}
}

func (s *OrderScreen) View(spinner string) string {
	d := components.Decoration{}
	if s.loading {
		d.Spinner = spinner
	}
	if s.err != nil {
		d.Notice = noticeText(s.err)
	}
	return s.list.View(d)
}

func (s *OrderScreen) Close() { s.cancel() }

// orderDetailRows lays out an order as section headers and rows
func orderDetailRows(o *domain.Order, refunded []domain.RefundedProduct) []components.Row {
	rows := []components.Row{
		{Kind: components.RowHeader, Title: fmt.Sprintf("#%s · %s", o.Number, o.StatusKey)},
		{Kind: components.RowText, Title: "Customer: " + valueOr(o.BillingName, "guest")},
		{Kind: components.RowText, Title: "Placed " + o.DateCreated.Local().Format("Jan 2, 2006 15:04")},
		{Kind: components.RowText, Title: "Total " + formatMoney(o.Total, o.Currency) + paidVia(o)},
		{Kind: components.RowHeader, Title: "Customer note"},
		{Kind: components.RowText, Title: valueOr(strings.TrimSpace(o.CustomerNote), "No note")},
		{Kind: components.RowHeader, Title: fmt.Sprintf("Items (%d)", len(o.Items))},
	}
	for _, item := range o.Items {
		rows = append(rows, components.Row{
			Kind:   components.RowOrderItem,
			ID:     item.ItemID,
			Title:  fmt.Sprintf("%d × %s", item.Quantity, item.Name),
			Detail: formatMoney(item.Total, o.Currency),
			Value:  item,
		})
	}
	if len(refunded) == 0 {
		return rows
	}
	rows = append(rows, components.Row{Kind: components.RowHeader, Title: "Refunded products"})
	for _, p := range refunded {
		rows = append(rows, components.Row{
			Kind:   components.RowRefundedProduct,
			ID:     p.ProductID,
			Title:  fmt.Sprintf("%d × %s", -p.Quantity, p.Name),
			Detail: formatMoney(p.Total.StringFixed(2), o.Currency),
			Value:  p,
		})
	}
	return rows
}

func paidVia(o *domain.Order) string {
	if o.PaymentMethodTitle == "" {
		return ""
	}
	return " via " + o.PaymentMethodTitle
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
