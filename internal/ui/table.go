package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows of text in aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
	Width   int
}

// NewTable creates a table with the given column headings
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Width: GetTerminalWidth()}
}

// AddRow appends a row; missing cells render empty
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Render returns the table as a string
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.renderRow(t.Headers, widths, TableHeaderStyle))
	b.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	if limit := clampWidth(t.Width) - 2; total > limit {
		total = limit
	}
	b.WriteString("  " + RenderHorizontalDivider(total-2, "─"))

	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(t.renderRow(row, widths, TableCellStyle))
	}
	return b.String()
}

func (t *Table) renderRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = style.Width(w).Render(cell)
	}
	return "  " + strings.Join(parts, "  ")
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}
