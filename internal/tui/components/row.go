package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wooterm/internal/tui/styles"
)

// RowKind tags what a Row represents and how it is rendered
type RowKind int

const (
	RowProduct RowKind = iota
	RowVariation
	RowOrder
	RowReview
	RowOrderItem
	RowRefundedProduct
	RowHeader
	RowText
)

// Row is one line of a list screen. Value holds the entity the row was built
// from (*domain.Product, *domain.Order, ...), nil for headers and text.
type Row struct {
	Kind   RowKind
	ID     int64
	Title  string
	Detail string
	Status string // order status or review rating, drives the indicator
	Value  any
}

// Selectable reports whether the cursor may rest on the row
func (r Row) Selectable() bool {
	return r.Kind != RowHeader && r.Kind != RowText
}

func indicator(r Row) (string, lipgloss.Color) {
	switch r.Kind {
	case RowProduct:
		return "■", styles.WooPurple
	case RowVariation:
		return "◆", styles.WooPurple
	case RowOrder:
		return "●", styles.StatusColor(r.Status)
	case RowReview:
		return stars(r.Status), styles.Amber
	case RowOrderItem:
		return "·", styles.LightGray
	case RowRefundedProduct:
		return "↺", styles.Red
	default:
		return "", styles.DimGray
	}
}

func stars(rating string) string {
	n := 0
	if len(rating) == 1 && rating[0] >= '0' && rating[0] <= '5' {
		n = int(rating[0] - '0')
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// RenderRow renders r at width, highlighted when selected
func RenderRow(r Row, selected bool, width int) string {
	switch r.Kind {
	case RowHeader:
		return " " + styles.AccentStyle.Bold(true).Render(styles.Truncate(r.Title, width-2))
	case RowText:
		return " " + styles.SubtitleStyle.Render(styles.Truncate(r.Title, width-2))
	}

	glyph, fg := indicator(r)
	detail := r.Detail
	// margins(2) + glyph + space + gap before detail
	available := width - 2 - lipgloss.Width(glyph) - 1
	if detail != "" {
		available -= lipgloss.Width(detail) + 1
	}
	if available < 5 {
		available = 5
		detail = ""
	}
	title := styles.Truncate(r.Title, available)
	gap := available - lipgloss.Width(title)

	dim := styles.DimGray
	parts := []styles.RowPart{
		{Text: glyph, Foreground: &fg},
		{Text: " " + title},
	}
	if detail != "" {
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", gap+1) + detail, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}
