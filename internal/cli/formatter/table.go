package formatter

import (
	"strings"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// MaxCellWidth caps a column so long objectives do not push the remaining
// columns off screen.
const MaxCellWidth = 32

const colGap = 2

// CellText is the one-line display text of a cell. Absent values show as a
// dash and line breaks as ↵.
func CellText(r domain.Row, column string) string {
	v := r.Get(column)
	if domain.IsAbsent(v) {
		return "—"
	}
	return strings.ReplaceAll(domain.NormalizeNewlines(domain.FormatValue(v)), "\n", "↵")
}

// Truncate shortens s to at most width terminal cells, marking the cut with "…".
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// RenderSnapshot lays out every column of snap as an aligned table under a
// header rule. Absent cells are dimmed.
func RenderSnapshot(snap *domain.Snapshot) string {
	if snap == nil || len(snap.Columns) == 0 {
		return ""
	}
	last := len(snap.Columns) - 1

	headers := make([]string, len(snap.Columns))
	widths := make([]int, len(snap.Columns))
	for i, c := range snap.Columns {
		headers[i] = Truncate(ColumnTitle(c), MaxCellWidth)
		widths[i] = lipgloss.Width(headers[i])
	}
	cells := make([][]string, len(snap.Rows))
	for r, row := range snap.Rows {
		cells[r] = make([]string, len(snap.Columns))
		for i, c := range snap.Columns {
			cells[r][i] = Truncate(CellText(row, c), MaxCellWidth)
			widths[i] = max(widths[i], lipgloss.Width(cells[r][i]))
		}
	}

	var b strings.Builder
	for i, h := range headers {
		writeCell(&b, StyleHeader.Render(h), lipgloss.Width(h), widths[i], i == last)
	}
	b.WriteString("\n")
	for i, w := range widths {
		writeCell(&b, StyleDim.Render(strings.Repeat("─", w)), w, w, i == last)
	}
	b.WriteString("\n")
	for r, row := range snap.Rows {
		for i, c := range snap.Columns {
			text := cells[r][i]
			styled := text
			if domain.IsAbsent(row.Get(c)) {
				styled = Dim(text)
			}
			writeCell(&b, styled, lipgloss.Width(text), widths[i], i == last)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// writeCell pads styled out to width. The last column gets no padding.
func writeCell(b *strings.Builder, styled string, visible, width int, last bool) {
	b.WriteString(styled)
	if !last {
		b.WriteString(strings.Repeat(" ", max(width-visible, 0)+colGap))
	}
}
