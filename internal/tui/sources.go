package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/wooterm/internal/catalog"
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/orders"
	"github.com/mmcdole/wooterm/internal/syncing"
	"github.com/mmcdole/wooterm/internal/tui/components"
)

type productSource struct {
	cmds    *catalog.Commands
	queries *catalog.Queries
}

func (s productSource) Title() string { return "Products" }

func (s productSource) Load(ctx context.Context, req syncing.PageRequest) error {
	_, err := s.cmds.SyncProducts(ctx, req.PageNumber, req.PageSize)
	return err
}

func (s productSource) Rows() []components.Row {
	products := s.queries.Products()
	rows := make([]components.Row, len(products))
	for i, p := range products {
		rows[i] = productRow(p)
	}
	return rows
}

func (s productSource) Results() syncing.Results { return s.queries.ProductResults() }

type variationSource struct {
	product *domain.Product
	cmds    *catalog.Commands
	queries *catalog.Queries
}

func (s variationSource) Title() string { return s.product.Name + " variations" }

func (s variationSource) Load(ctx context.Context, req syncing.PageRequest) error {
	_, err := s.cmds.SyncVariations(ctx, s.product.ProductID, req.PageNumber, req.PageSize)
	return err
}

func (s variationSource) Rows() []components.Row {
	variations := s.queries.Variations(s.product.ProductID)
	rows := make([]components.Row, len(variations))
	for i, v := range variations {
		detail := formatPrice(v.Price)
		if v.IsEnabledAndMissingPrice() {
			detail = "no price set"
		} else if !v.IsEnabled() {
			detail += " (disabled)"
		}
		rows[i] = components.Row{
			Kind:   components.RowVariation,
			ID:     v.ProductVariationID,
			Title:  v.Name(s.product.Attributes),
			Detail: detail,
			Value:  v,
		}
	}
	return rows
}

func (s variationSource) Results() syncing.Results {
	return s.queries.VariationResults(s.product.ProductID)
}

type orderSource struct {
	cmds    *orders.Commands
	queries *orders.Queries
}

func (s orderSource) Title() string { return "Orders" }

func (s orderSource) Load(ctx context.Context, req syncing.PageRequest) error {
	_, err := s.cmds.SyncOrders(ctx, req.PageNumber, req.PageSize)
	return err
}

func (s orderSource) Rows() []components.Row {
	list := s.queries.Orders()
	rows := make([]components.Row, len(list))
	for i, o := range list {
		rows[i] = orderRow(o)
	}
	return rows
}

func (s orderSource) Results() syncing.Results { return s.queries.OrderResults() }

type reviewSource struct {
	cmds    *catalog.Commands
	queries *catalog.Queries
}

func (s reviewSource) Title() string { return "Reviews" }

func (s reviewSource) Load(ctx context.Context, req syncing.PageRequest) error {
	_, err := s.cmds.SyncReviews(ctx, req.PageNumber, req.PageSize)
	return err
}

func (s reviewSource) Rows() []components.Row {
	reviews := s.queries.Reviews()
	rows := make([]components.Row, len(reviews))
	for i, r := range reviews {
		title := r.Reviewer + ": " + strings.Join(strings.Fields(r.Review), " ")
		detail := ""
		if p, ok := s.queries.Product(r.ProductID); ok {
			detail = p.Name
		}
		rows[i] = components.Row{
			Kind:   components.RowReview,
			ID:     r.ReviewID,
			Title:  title,
			Detail: detail,
			Status: strconv.Itoa(r.Rating),
			Value:  r,
		}
	}
	return rows
}

func (s reviewSource) Results() syncing.Results { return s.queries.ReviewResults() }

func productRow(p *domain.Product) components.Row {
	detail := formatPrice(p.Price)
	if stock := p.StockDescription(); stock != "" {
		detail += " · " + stock
	}
	if p.ProductType() == domain.ProductTypeVariable {
		detail += fmt.Sprintf(" · %d variations", len(p.Variations))
	}
	return components.Row{
		Kind:   components.RowProduct,
		ID:     p.ProductID,
		Title:  p.Name,
		Detail: detail,
		Value:  p,
	}
}

func orderRow(o *domain.Order) components.Row {
	title := "#" + o.Number
	if o.BillingName != "" {
		title += " " + o.BillingName
	}
	return components.Row{
		Kind:   components.RowOrder,
		ID:     o.OrderID,
		Title:  title,
		Detail: o.StatusKey + " · " + formatMoney(o.Total, o.Currency),
		Status: o.StatusKey,
		Value:  o,
	}
}

func formatPrice(price string) string {
	if price == "" {
		return "—"
	}
	return "$" + price
}

func formatMoney(amount, currency string) string {
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}
