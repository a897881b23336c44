package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	rowStyle      = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#16213e")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))
)

const skeletonRows = 5

// Render draws the table: header, rows for the current page, and a
// footer with page/sort state. Loading renders a skeleton matching the
// column count, an error renders in place of rows, and an empty filtered
// view renders the empty message.
func (t *Table[T]) Render() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(t.headerLine()) + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", t.totalWidth())) + "\n")

	switch {
	case t.loading:
		cell := strings.Repeat("░", 8)
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cells[i] = pad(cell, t.colWidth(col))
		}
		for n := 0; n < skeletonRows; n++ {
			b.WriteString(skeletonStyle.Render(strings.Join(cells, "  ")) + "\n")
		}

	case t.err != nil:
		b.WriteString(errorStyle.Render("✗ "+t.err.Error()) + "\n")

	case len(t.Page()) == 0:
		b.WriteString(mutedStyle.Render(t.emptyMsg) + "\n")

	default:
		for i, row := range t.Page() {
			cells := make([]string, len(t.columns))
			for j, col := range t.columns {
				cells[j] = pad(col.Render(row), t.colWidth(col))
			}
			line := strings.Join(cells, "  ")
			if i == t.cursor {
				b.WriteString(selectedStyle.Render("❯ "+line) + "\n")
			} else {
				b.WriteString(rowStyle.Render("  "+line) + "\n")
			}
		}
	}

	b.WriteString(mutedStyle.Render(t.footerLine()))
	return b.String()
}

func (t *Table[T]) headerLine() string {
	sortKey, dir, sorted := t.SortState()
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		label := col.Label
		if sorted && col.Key == sortKey {
			if dir == Ascending {
				label += " ▲"
			} else {
				label += " ▼"
			}
		}
		cells[i] = pad(label, t.colWidth(col))
	}
	return "  " + strings.Join(cells, "  ")
}

func (t *Table[T]) footerLine() string {
	page, pages := t.PageInfo()
	n := len(t.Rows())
	parts := []string{fmt.Sprintf("%d records", n), fmt.Sprintf("page %d/%d", page+1, pages)}
	if q := t.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("filter: %q", q))
	}
	return strings.Join(parts, " · ")
}

func (t *Table[T]) colWidth(col Column[T]) int {
	if col.Width > 0 {
		return col.Width
	}
	return 16
}

func (t *Table[T]) totalWidth() int {
	w := 2
	for _, col := range t.columns {
		w += t.colWidth(col) + 2
	}
	return w
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
