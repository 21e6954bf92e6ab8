package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table is a plain text table with optional right-aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
	Right   map[int]bool
}

// Lines formats the table, one string per row including the header.
func (t Table) Lines() []string {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	lines := make([]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		lines = append(lines, t.formatRow(t.Headers, widths))
	}
	for _, row := range t.Rows {
		lines = append(lines, t.formatRow(row, widths))
	}
	return lines
}

// Write prints the table to w.
func (t Table) Write(w io.Writer) error {
	for _, l := range t.Lines() {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (t Table) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		if t.Right[i] {
			b.WriteString(runewidth.FillLeft(cell, width))
		} else if i < len(widths)-1 {
			b.WriteString(runewidth.FillRight(cell, width))
		} else {
			b.WriteString(cell)
		}
	}
	return b.String()
}
