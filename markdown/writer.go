package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// writer walks one parsed document.
type writer struct {
	styles styles
	source []byte
}

func (w *writer) blocks(node ast.Node, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c, width, buf)
		if c.NextSibling() != nil {
			buf.WriteString("\n")
		}
	}
}

func (w *writer) block(node ast.Node, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.wrapped(w.inline(n), width, buf)

	case *ast.Heading:
		prefix := strings.Repeat("#", n.Level) + " "
		w.wrapped(w.styles.heading.Render(prefix+w.inline(n)), width, buf)

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.source)); lang != "" {
			buf.WriteString(w.styles.muted.Render(lang) + "\n")
		}
		w.code(n.Lines(), buf)

	case *ast.CodeBlock:
		w.code(n.Lines(), buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		w.blocks(n, width-2, &inner)
		bar := w.styles.muted.Render("▎") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + w.styles.quote.Render(line) + "\n")
		}

	case *ast.List:
		w.list(n, width, 0, buf)

	case *ast.ThematicBreak:
		buf.WriteString(w.styles.muted.Render(strings.Repeat("─", width)) + "\n")

	case *east.Table:
		w.table(n, buf)

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(w.source))
		}

	default:
		w.blocks(node, width, buf)
	}
}

func (w *writer) wrapped(s string, width int, buf *bytes.Buffer) {
	buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	buf.WriteString("\n")
}

func (w *writer) code(lines *text.Segments, buf *bytes.Buffer) {
	gutter := w.styles.muted.Render("│") + " "
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.source)), "\n")
		buf.WriteString(gutter + line + "\n")
	}
}

func (w *writer) list(n *ast.List, width, depth int, buf *bytes.Buffer) {
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		indent := strings.Repeat("  ", depth)

		var body strings.Builder
		flush := func() {
			if body.Len() == 0 {
				return
			}
			w.item(indent+marker, body.String(), width, buf)
			body.Reset()
			marker = strings.Repeat(" ", lipgloss.Width(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if body.Len() > 0 {
					body.WriteString(" ")
				}
				body.WriteString(w.inline(in))
			case *ast.List:
				flush()
				w.list(in, width, depth+1, buf)
			default:
				flush()
				w.block(ic, width-len(indent)-2, buf)
			}
		}
		flush()
	}
}

// item writes a list item, indenting continuation lines under the text.
func (w *writer) item(prefix, content string, width int, buf *bytes.Buffer) {
	pw := lipgloss.Width(prefix)
	inner := max(width-pw, 10)
	pad := strings.Repeat(" ", pw)
	wrapped := lipgloss.NewStyle().Width(inner).Render(content)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(pad + line + "\n")
		}
	}
}

func (w *writer) inline(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.span(c, &buf)
	}
	return buf.String()
}

func (w *writer) span(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := w.inline(n)
		if n.Level == 1 {
			buf.WriteString(w.styles.italic.Render(inner))
		} else {
			buf.WriteString(w.styles.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(w.styles.strike.Render(w.inline(n)))

	case *ast.CodeSpan:
		buf.WriteString(w.styles.code.Render(w.inline(n)))

	case *ast.Link:
		buf.WriteString(w.styles.link.Render(w.inline(n)))
		buf.WriteString(" " + w.styles.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(w.styles.link.Render(string(n.URL(w.source))))

	case *ast.Image:
		buf.WriteString(w.styles.muted.Render("[image: " + w.inline(n) + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(w.source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.span(c, buf)
		}
	}
}
