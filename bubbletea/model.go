package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/markdown"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

const helpHint = "Enter send · Ctrl+G revise · Ctrl+L clear · Tab quiz · Ctrl+C quit"

type focus int

const (
	focusInput focus = iota
	focusQuiz
)

// Result messages of the commands the model starts.
type sentMsg struct{ err error }

type clearedMsg struct{ err error }

type revisedMsg struct {
	questions []coursechat.Question
	err       error
}

type recordedMsg struct{ err error }

// Option configures a [Model].
type Option func(*Model)

// WithTheme sets the color theme.
func WithTheme(t coursechat.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithRevisionSchedule sets the schedule used to reset progress after a clear.
func WithRevisionSchedule(r coursechat.RevisionSchedule) Option {
	return func(m *Model) { m.schedule = r }
}

// WithLogger sets the logger for failures that are not shown on screen.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithContext sets the context for server calls and answer streams.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the Bubble Tea model for the course chat.
type Model struct {
	// Input is the question input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model

	chat     *coursechat.Chat
	bridge   *Bridge
	ctx      context.Context
	logger   *slog.Logger
	schedule coursechat.RevisionSchedule
	theme    coursechat.Theme
	styles   Styles
	cache    *renderCache

	snapshot   coursechat.Snapshot
	transcript *coursechat.Transcript
	progress   coursechat.Progress
	quiz       *coursechat.Quiz

	focus        focus
	cursor       int
	confirmClear bool
	awaiting     int // questions posted whose response has not started
	streaming    bool
	revising     bool
	err          error
	ready        bool
}

// New creates a Model for chat, restoring the conversation from snap.
// bridge must be the one wired into chat's scheduler.
func New(chat *coursechat.Chat, bridge *Bridge, snap coursechat.Snapshot, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about the course..."
	ti.Prompt = "> "
	ti.CharLimit = coursechat.MaxMessageLength
	ti.Focus()

	m := Model{
		Input:    ti,
		chat:     chat,
		bridge:   bridge,
		ctx:      context.Background(),
		logger:   slog.New(slog.DiscardHandler),
		schedule: coursechat.DefaultRevisionSchedule(),
		theme:    coursechat.DefaultTheme(),
		snapshot: snap,
	}
	for _, o := range opts {
		o(&m)
	}
	m.styles = NewStyles(m.theme)
	m.cache = newRenderCache(markdown.New(m.theme))

	m.transcript = coursechat.NewTranscript(snap.Messages...)
	m.progress = snap.Progress
	if m.progress.NextRevisionAt == 0 {
		m.progress = coursechat.NewProgress(m.schedule)
	}
	m.quiz = coursechat.NewQuiz(chat.CourseID(), snap.Questions...)
	return m
}

// Err returns the error shown in the status line, if any.
func (m Model) Err() error { return m.err }

// Streaming reports whether an answer is being received.
func (m Model) Streaming() bool { return m.streaming }

// QuizFocused reports whether keys go to the quiz panel.
func (m Model) QuizFocused() bool { return m.focus == focusQuiz }

// Progress returns the question counters.
func (m Model) Progress() coursechat.Progress { return m.progress }

// Quiz returns the revision quiz.
func (m Model) Quiz() *coursechat.Quiz { return m.quiz }

// Snapshot returns the state to persist between runs.
func (m Model) Snapshot() coursechat.Snapshot {
	s := m.snapshot
	s.CourseID = m.chat.CourseID()
	s.UpdatedAt = time.Now()
	s.Messages = append([]coursechat.Message(nil), m.transcript.Messages...)
	s.Progress = m.progress
	s.Questions = m.quiz.Questions()
	return s
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.listen())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		m.transcript.BeginAssistant(time.Now())
		m.streaming = true
		return m.refresh(), m.bridge.listen()

	case StreamEventMsg:
		var cmd tea.Cmd
		m, cmd = m.processEvent(msg.Event)
		return m.refresh(), tea.Batch(m.bridge.listen(), cmd)

	case StreamDoneMsg:
		m.transcript.Finish()
		m.streaming = false
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Warn("answer stream failed", "error", msg.Err)
		}
		return m.refresh(), m.bridge.listen()

	case sentMsg:
		m.awaiting = max(m.awaiting-1, 0)
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case revisedMsg:
		m.revising = false
		if msg.err != nil {
			if errors.Is(msg.err, coursechat.ErrNoHistory) {
				msg.err = errors.New("ask a question before generating revision questions")
			}
			m.err = msg.err
			return m, nil
		}
		m.quiz.Replace(msg.questions)
		m.cursor = 0
		var cmd tea.Cmd
		if !m.quiz.Visible() {
			m, cmd = m.focusInput()
		}
		return m.refresh(), cmd

	case clearedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.transcript.Clear(time.Now())
		m.progress.Reset(m.schedule)
		m.quiz.Reset()
		var cmd tea.Cmd
		m, cmd = m.focusInput()
		return m.refresh(), cmd

	case recordedMsg:
		if msg.err != nil {
			m.logger.Warn("recording quiz answer failed", "error", msg.err)
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.focus == focusInput {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputHeight := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width - lipgloss.Width(m.Input.Prompt) - 1
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.confirmClear {
		switch msg.String() {
		case "y", "Y":
			m.confirmClear = false
			return m, m.clear()
		case "n", "N", "esc":
			m.confirmClear = false
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlL:
		m.confirmClear = true
		m.err = nil
		return m, nil

	case tea.KeyCtrlG:
		if m.revising {
			return m, nil
		}
		m.revising = true
		m.err = nil
		return m, m.revise()

	case tea.KeyTab:
		if m.focus == focusQuiz {
			var cmd tea.Cmd
			m, cmd = m.focusInput()
			return m.refresh(), cmd
		}
		if m.quiz.Visible() {
			m.focus = focusQuiz
			m.cursor = min(m.cursor, len(m.quiz.Items)-1)
			m.Input.Blur()
			return m.refresh(), nil
		}
		return m, nil
	}

	if m.focus == focusQuiz {
		return m.handleQuizKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	// Runes are text for the input; other keys may also scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleQuizKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var err error
	switch key := msg.String(); key {
	case "esc":
		m, cmd = m.focusInput()
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.quiz.Items)-1)
	case "a", "b", "c", "d":
		err = m.quiz.Select(m.cursor, key)
	case "enter":
		var a coursechat.Answer
		a, err = m.quiz.Check(m.cursor)
		if err == nil {
			cmd = m.record(a)
		}
	case "r":
		err = m.quiz.TryAgain(m.cursor)
	default:
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd
	}
	m.err = err
	return m.refresh(), cmd
}

func (m Model) focusInput() (Model, tea.Cmd) {
	m.focus = focusInput
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	if err := coursechat.ValidateMessage(m.chat.CourseID(), text); err != nil {
		m.err = err
		return m, nil
	}
	m.transcript.AddUser(text, time.Now())
	m.awaiting++
	return m.refresh(), m.send(text)
}

// processEvent applies a decoded event to the conversation and counters.
func (m Model) processEvent(evt coursechat.Event) (Model, tea.Cmd) {
	m.transcript.Apply(evt)
	end, ok := evt.(coursechat.EventEnd)
	if !ok {
		return m, nil
	}
	m.progress.Apply(end)
	if end.TriggerRevision && !m.revising {
		m.revising = true
		return m, m.revise()
	}
	return m, nil
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	open := m.transcript.OpenIndex()
	var parts []string
	for i, msg := range m.transcript.Messages {
		var b MessageBlock
		if msg.Role == coursechat.RoleUser {
			b = NewUserMessageBlock(msg.Text, m.styles)
		} else {
			b = NewAssistantBlock(msg, i == open, m.styles, m.cache.render)
		}
		parts = append(parts, b.View(width))
	}
	if m.quiz.Visible() {
		parts = append(parts, NewQuizPanel(m.quiz, m.cursor, m.focus == focusQuiz, m.styles).View(width))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.confirmClear {
		return m.styles.Accent.Render(runewidth.Truncate("Clear chat history? (y/n)", width, "…"))
	}
	if m.err != nil {
		return m.styles.Error.Render(runewidth.Truncate("Error: "+m.err.Error(), width, "…"))
	}

	status := fmt.Sprintf("Questions: %d · Next revision at %d", m.progress.QuestionCount, m.progress.NextRevisionAt)
	switch {
	case m.streaming:
		status += " · Answering..."
	case m.awaiting > 0:
		status += " · Thinking..."
	case m.revising:
		status += " · Generating revision questions..."
	default:
		status += "  " + helpHint
	}
	return m.styles.Muted.Render(runewidth.Truncate(status, width, "…"))
}

func (m Model) send(text string) tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return sentMsg{err: chat.Send(ctx, text)}
	}
}

func (m Model) clear() tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return clearedMsg{err: chat.Clear(ctx)}
	}
}

func (m Model) revise() tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		qs, err := chat.Revise(ctx)
		return revisedMsg{questions: qs, err: err}
	}
}

func (m Model) record(a coursechat.Answer) tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return recordedMsg{err: chat.Record(ctx, a)}
	}
}
