// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandy-sp/ollama-scout/internal/util"
)

// Align is a column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column.
type Column struct {
	Header string
	Align  Align
	// MaxWidth truncates longer cells with "..."; zero means unlimited.
	MaxWidth int
}

// Cell is a table value with an optional style. Widths are measured on
// the plain text so ANSI codes never skew alignment.
type Cell struct {
	Text  string
	Style *lipgloss.Style
}

// Plain returns an unstyled cell.
func Plain(s string) Cell { return Cell{Text: s} }

// Styled returns a cell rendered with style.
func Styled(style lipgloss.Style, s string) Cell { return Cell{Text: s, Style: &style} }

// Table is a column-aligned text table.
type Table struct {
	Title   string
	Columns []Column
	rows    [][]Cell
}

// NewTable creates a table with the given columns.
func NewTable(title string, columns ...Column) *Table {
	return &Table{Title: title, Columns: columns}
}

// AddRow appends a row; missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) widths() []int {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = util.DisplayWidth(c.Header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			w := util.DisplayWidth(t.clip(i, cell.Text))
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *Table) clip(col int, s string) string {
	if limit := t.Columns[col].MaxWidth; limit > 0 {
		return util.TruncateWidth(s, limit)
	}
	return s
}

func (t *Table) pad(col int, s string, width int) string {
	if t.Columns[col].Align == AlignRight {
		return util.PadLeft(s, width)
	}
	return util.PadRight(s, width)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	widths := t.widths()
	total := 0
	for _, cw := range widths {
		total += cw + 2
	}

	if t.Title != "" {
		fmt.Fprintln(w, TitleStyle.Render(t.Title))
	}

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = HeaderStyle.Render(t.pad(i, c.Header, widths[i]))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))
	fmt.Fprintln(w, SeparatorStyle.Render(strings.Repeat("-", max(total-2, 0))))

	for _, row := range t.rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			text := t.pad(i, t.clip(i, cell.Text), widths[i])
			if cell.Style != nil {
				text = cell.Style.Render(text)
			}
			parts[i] = text
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}
