package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/wooterm/internal/tui/styles"
)

// Layout constants for row lists
const (
	BorderWidth  = 2
	BorderHeight = 2

	// title + "↑ more" + footer line
	chromeLines = 3
)

// Decoration is what a screen adds around its rows for one frame
type Decoration struct {
	Ghost   bool   // show placeholder rows instead of content
	Spinner string // footer spinner frame, empty when idle
	Notice  string // error notice, empty when none
	Empty   string // message when there are no rows
}

// RowList is a scrollable, filterable list of rows
type RowList struct {
	rows []Row

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool
	title   string

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into rows
}

// NewRowList creates an empty, focused list
func NewRowList(title string) *RowList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &RowList{title: title, filterInput: ti, focused: true}
}

func (l *RowList) Title() string         { return l.title }
func (l *RowList) SetTitle(title string) { l.title = title }
func (l *RowList) SetFocused(f bool)     { l.focused = f }

// SetRows replaces the rows, keeping the cursor where it was when possible
// and re-running an active filter.
func (l *RowList) SetRows(rows []Row) {
	l.rows = rows
	if l.filterActive && l.filterQuery != "" {
		l.runFilter()
	}
	l.clampCursor()
}

func (l *RowList) Rows() []Row { return l.rows }

// Len returns the number of visible rows after filtering
func (l *RowList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.rows)
}

// Cursor returns the cursor position among visible rows
func (l *RowList) Cursor() int { return l.cursor }

// Selected returns the row under the cursor
func (l *RowList) Selected() (Row, bool) {
	if l.Len() == 0 {
		return Row{}, false
	}
	return l.rows[l.mapIndex(l.cursor)], true
}

func (l *RowList) SetCursor(i int) {
	l.cursor = i
	l.clampCursor()
}

func (l *RowList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// IsFiltering returns true if filter mode is active
func (l *RowList) IsFiltering() bool { return l.filterActive }

// IsFilterTyping returns true if the filter input has focus
func (l *RowList) IsFilterTyping() bool { return l.filterActive && l.filterInput.Focused() }

// StartFilter activates the filter input
func (l *RowList) StartFilter() tea.Cmd {
	l.filterActive = true
	l.recalcMaxVisible()
	return l.filterInput.Focus()
}

// ClearFilter deactivates the filter and shows all rows
func (l *RowList) ClearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.clampCursor()
}

// Update handles navigation and filter keys. moved reports whether the
// cursor changed.
func (l *RowList) Update(msg tea.Msg) (moved bool, cmd tea.Cmd) {
	if !l.focused {
		return false, nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	if l.IsFilterTyping() {
		if isKey {
			switch keyMsg.String() {
			case "esc":
				l.ClearFilter()
				return true, nil
			case "enter":
				l.filterInput.Blur()
				return false, nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.ClearFilter()
					return true, nil
				}
			}
		}
		l.filterInput, cmd = l.filterInput.Update(msg)
		if l.filterInput.Value() != l.filterQuery {
			l.filterQuery = l.filterInput.Value()
			l.runFilter()
			l.cursor, l.offset = 0, 0
			moved = true
		}
		return moved, cmd
	}

	if !isKey {
		return false, nil
	}
	if l.filterActive {
		switch keyMsg.String() {
		case "esc":
			l.ClearFilter()
			return true, nil
		case "/":
			return false, l.filterInput.Focus()
		}
	}

	count := l.Len()
	if count == 0 {
		return false, nil
	}
	before := l.cursor
	switch keyMsg.String() {
	case "j", "down":
		l.cursor++
	case "k", "up":
		l.cursor--
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = count - 1
	case "ctrl+d", "pgdown":
		l.cursor += max(l.maxVisible/2, 1)
	case "ctrl+u", "pgup":
		l.cursor -= max(l.maxVisible/2, 1)
	}
	l.clampCursor()
	return l.cursor != before, nil
}

// View renders the list inside a border of the configured size
func (l *RowList) View(d Decoration) string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent(d))
}

func (l *RowList) recalcMaxVisible() {
	l.maxVisible = l.height - BorderHeight - chromeLines
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *RowList) clampCursor() {
	if l.cursor >= l.Len() {
		l.cursor = l.Len() - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *RowList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset > 0 && l.offset+l.maxVisible > l.Len() {
		l.offset = max(l.Len()-l.maxVisible, 0)
	}
}

// rowSource adapts rows to sahilm/fuzzy.Source
type rowSource []Row

func (s rowSource) String(i int) string { return strings.ToLower(s[i].Title) }
func (s rowSource) Len() int            { return len(s) }

func (l *RowList) runFilter() {
	if l.filterQuery == "" {
		l.filteredIdx = nil
		return
	}
	matches := fuzzy.FindFrom(strings.ToLower(l.filterQuery), rowSource(l.rows))
	l.filteredIdx = make([]int, len(matches))
	for i, m := range matches {
		l.filteredIdx[i] = m.Index
	}
}

func (l *RowList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

func (l *RowList) renderContent(d Decoration) string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	var lines []string
	header := " "
	footer := " "

	visible := l.maxVisible
	if d.Notice != "" && visible > 1 {
		visible--
	}

	count := l.Len()
	switch {
	case d.Ghost:
		for i := 0; i < visible; i++ {
			width := itemWidth - 4 - (i*7)%(itemWidth/3+1)
			lines = append(lines, "  "+styles.GhostStyle.Render(strings.Repeat("░", max(width, 4))))
		}
	case count == 0:
		empty := d.Empty
		if empty == "" {
			empty = "No items"
		}
		if l.filterActive && l.filterQuery != "" {
			empty = "No matches"
		}
		lines = append(lines, styles.DimStyle.Render(" "+empty))
	default:
		end := min(l.offset+visible, count)
		for i := l.offset; i < end; i++ {
			lines = append(lines, RenderRow(l.rows[l.mapIndex(i)], i == l.cursor, itemWidth))
		}
		if l.offset > 0 {
			header = styles.DimStyle.Render("↑ more")
		}
		if end < count {
			footer = styles.DimStyle.Render("↓ more")
		}
	}

	if d.Spinner != "" {
		footer = styles.SpinnerStyle.Render(d.Spinner) + styles.DimStyle.Render(" Loading more...")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if d.Notice != "" {
		content += "\n" + styles.NoticeStyle.Render(styles.Truncate(d.Notice, itemWidth-2))
	}
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *RowList) renderFilterBar() string {
	bar := l.filterInput.View()
	if l.filterQuery != "" {
		bar += styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.Len(), len(l.rows)))
	}
	return bar
}
