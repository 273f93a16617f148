package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
)

var _ MessageBlock = (*AssistantBlock)(nil)

// irrelevantBadge marks answers to questions outside the course.
const irrelevantBadge = "Not course-related"

// RenderFunc renders markdown to width.
type RenderFunc func(source string, width int) string

// AssistantBlock renders an answer: markdown text, an optional off-topic
// badge, and an optional error line.
type AssistantBlock struct {
	msg       coursechat.Message
	streaming bool
	styles    Styles
	render    RenderFunc
}

// NewAssistantBlock creates a block for msg. streaming marks the answer
// that is still being received.
func NewAssistantBlock(msg coursechat.Message, streaming bool, styles Styles, render RenderFunc) *AssistantBlock {
	return &AssistantBlock{msg: msg, streaming: streaming, styles: styles, render: render}
}

func (b *AssistantBlock) View(width int) string {
	var parts []string
	if b.msg.Irrelevant {
		parts = append(parts, b.styles.Badge.Render(irrelevantBadge))
	}

	text := b.msg.Text
	if b.streaming && hasUnclosedFence(text) {
		// Close the fence for rendering only so partial code displays.
		text += "\n```"
	}
	switch {
	case strings.TrimSpace(text) != "":
		parts = append(parts, b.render(text, width))
	case b.streaming && b.msg.Err == "":
		parts = append(parts, b.styles.Muted.Render("…"))
	}

	if b.msg.Err != "" {
		parts = append(parts, lipgloss.NewStyle().Width(width).Render(b.styles.Error.Render(b.msg.Err)))
	}
	return strings.Join(parts, "\n")
}

// hasUnclosedFence reports whether s has an odd number of "```" markers.
// Triple backticks inside inline code are miscounted; tutor answers rarely
// contain them.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
