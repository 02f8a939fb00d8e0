package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	Marked  int // row rendered as selected (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, Marked: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells wider than their column
// are cut; styled cells are measured by visible width.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	cell := func(s string, width int) string {
		if lipgloss.Width(s) > width {
			s = lipgloss.NewStyle().MaxWidth(width).Render(s)
		}
		return padR(s, width)
	}

	var parts []string
	for _, col := range t.Columns {
		parts = append(parts, headerStyle.Render(cell(col.Title, col.Width)))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	parts = parts[:0]
	for _, col := range t.Columns {
		parts = append(parts, StyleDim.Render(strings.Repeat("─", col.Width)))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	for i, row := range t.Rows {
		parts = parts[:0]
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			val = cell(val, col.Width)
			if i == t.Marked {
				val = StyleSelected.Render(val)
			}
			parts = append(parts, val)
		}
		sb.WriteString(strings.Join(parts, " ") + "\n")
	}

	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]) + 1; w > width {
			width = w
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for i, p := range pairs {
		sb.WriteString("  " + padR(StyleMeta.Render(p[0]+":"), width) + "  " + StyleValue.Render(p[1]))
		if i < len(pairs)-1 {
			sb.WriteString("\n")
		}
	}
	return StyleBorder.Render(sb.String())
}
