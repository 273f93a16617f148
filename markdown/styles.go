package markdown

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
)

type styles struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	code      lipgloss.Style
	muted     lipgloss.Style
	link      lipgloss.Style
	quote     lipgloss.Style
	tableHead lipgloss.Style
}

func newStyles(theme coursechat.Theme) styles {
	return styles{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		code:      lipgloss.NewStyle().Foreground(color(theme.Accent)).Background(color(theme.CodeBg)),
		muted:     lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		link:      lipgloss.NewStyle().Underline(true),
		quote:     lipgloss.NewStyle().Foreground(color(theme.Muted)).Italic(true),
		tableHead: lipgloss.NewStyle().Bold(true),
	}
}

// color maps an ANSI index to a lipgloss color; negative means no color.
func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
