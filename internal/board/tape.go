package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	tapeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	tapeLastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

type tapeItem struct {
	text  string
	width int
}

// tapeItems numbers the moves. A white move carries its move number so a
// line never starts with a bare black move.
func tapeItems(sans []string) []tapeItem {
	items := make([]tapeItem, 0, len(sans))
	for i, san := range sans {
		text := san
		if i%2 == 0 {
			text = fmt.Sprintf("%d. %s", i/2+1, san)
		}
		items = append(items, tapeItem{text: text, width: runewidth.StringWidth(text)})
	}
	return items
}

// Tape renders the move history wrapped to width columns. With styled set
// the last move is highlighted. A width of zero disables wrapping.
func Tape(sans []string, width int, styled bool) string {
	items := tapeItems(sans)
	var out strings.Builder
	lineWidth := 0
	for i, item := range items {
		if lineWidth > 0 {
			if width > 0 && lineWidth+1+item.width > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		text := item.text
		if styled {
			if i == len(items)-1 {
				text = tapeLastStyle.Render(text)
			} else {
				text = tapeStyle.Render(text)
			}
		}
		out.WriteString(text)
		lineWidth += item.width
	}
	return out.String()
}
