package markdown

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	east "github.com/yuin/goldmark/extension/ast"
)

// table lays out a GFM table with columns sized to their widest cell.
func (w *writer) table(t *east.Table, buf *bytes.Buffer) {
	var rows [][]string
	header := -1
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, w.inline(c))
		}
		if _, ok := r.(*east.TableHeader); ok {
			header = len(rows)
			for i, c := range cells {
				cells[i] = w.styles.tableHead.Render(c)
			}
		}
		rows = append(rows, cells)
	}

	widths := make([]int, len(t.Alignments))
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}

	sep := w.styles.muted.Render(" │ ")
	for ri, row := range rows {
		parts := make([]string, len(widths))
		for i := range widths {
			var c string
			if i < len(row) {
				c = row[i]
			}
			parts[i] = align(c, widths[i], t.Alignments[i])
		}
		buf.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
		if ri == header {
			rules := make([]string, len(widths))
			for i, wd := range widths {
				rules[i] = strings.Repeat("─", wd)
			}
			buf.WriteString(w.styles.muted.Render(strings.Join(rules, "─┼─")) + "\n")
		}
	}
}

func align(s string, width int, a east.Alignment) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + s
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
