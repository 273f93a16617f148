// Package markdown renders tutor answers to ANSI-styled terminal output.
// goldmark parses the source (with the GFM table and strikethrough
// extensions) and lipgloss styles the result.
package markdown

import (
	"bytes"
	"strings"

	"github.com/fwojciec/coursechat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// minWidth is the narrowest wrap width the renderer accepts.
const minWidth = 20

// Renderer renders markdown with a fixed theme. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	styles styles
}

// New creates a Renderer for theme.
func New(theme coursechat.Theme) *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
		styles: newStyles(theme),
	}
}

// Render returns source as styled text wrapped to width. Code blocks and
// tables keep their layout and are not reflowed.
func (r *Renderer) Render(source string, width int) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width < minWidth {
		width = minWidth
	}
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))

	w := &writer{styles: r.styles, source: src}
	var buf bytes.Buffer
	w.blocks(doc, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

// Render is a convenience wrapper for one-off rendering.
func Render(source string, width int, theme coursechat.Theme) string {
	return New(theme).Render(source, width)
}
