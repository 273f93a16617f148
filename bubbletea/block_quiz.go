package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*QuizPanel)(nil)

const quizHint = "↑/↓ question · a-d choose · Enter check · r try again · Esc back"

// QuizPanel renders the revision questions below the conversation.
type QuizPanel struct {
	quiz    *coursechat.Quiz
	cursor  int
	focused bool
	styles  Styles
}

// NewQuizPanel creates a panel for quiz. cursor is the highlighted
// question while the panel has focus.
func NewQuizPanel(quiz *coursechat.Quiz, cursor int, focused bool, styles Styles) *QuizPanel {
	return &QuizPanel{quiz: quiz, cursor: cursor, focused: focused, styles: styles}
}

func (p *QuizPanel) View(width int) string {
	var b strings.Builder
	b.WriteString(p.styles.Accent.Render("Revision questions"))
	if p.focused {
		b.WriteString("\n" + p.styles.Muted.Render(runewidth.Truncate(quizHint, width, "…")))
	} else {
		b.WriteString(" " + p.styles.Muted.Render("(Tab to answer)"))
	}

	for i, it := range p.quiz.Items {
		b.WriteString("\n\n")
		marker := "  "
		if p.focused && i == p.cursor {
			marker = p.styles.Accent.Render("▸ ")
		}
		question := lipgloss.NewStyle().Width(max(width-2, 10)).Render(fmt.Sprintf("Q%d. %s", i+1, it.Text))
		for j, line := range strings.Split(question, "\n") {
			if j == 0 {
				b.WriteString(marker + line)
			} else {
				b.WriteString("\n  " + line)
			}
		}
		for _, key := range it.Keys() {
			b.WriteString("\n" + p.option(it, key, width))
		}
		switch it.State {
		case coursechat.QuestionCorrect:
			b.WriteString("\n    " + p.styles.Success.Render("✓ Correct!"))
		case coursechat.QuestionIncorrect:
			b.WriteString("\n    " + p.styles.Error.Render("✗ Incorrect. Press r to try again."))
		}
	}
	return b.String()
}

func (p *QuizPanel) option(it coursechat.QuizItem, key string, width int) string {
	bullet := "○"
	if it.Selected == key {
		bullet = "●"
	}
	line := runewidth.Truncate(fmt.Sprintf("    %s %s) %s", bullet, key, it.Options[key]), width, "…")
	switch {
	case it.State == coursechat.QuestionCorrect && key == it.Correct:
		return p.styles.Success.Render(line)
	case it.State == coursechat.QuestionIncorrect && key == it.Selected:
		return p.styles.Error.Render(line)
	case it.Selected == key:
		return p.styles.Selected.Render(line)
	default:
		return line
	}
}
