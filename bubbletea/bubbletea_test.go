package bubbletea_test

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coursechat"
	bt "github.com/fwojciec/coursechat/bubbletea"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/require"
)

const courseID = "course-1"

// newModel wires a model to client through a real scheduler and bridge,
// the same way the command does.
func newModel(t *testing.T, client *mock.Client, snap coursechat.Snapshot, opts ...bt.Option) (bt.Model, *bt.Bridge) {
	t.Helper()
	bridge := bt.NewBridge()
	t.Cleanup(bridge.Close)
	scheduler := coursechat.NewScheduler(coursechat.NewDecoder(), bridge.Sink,
		coursechat.WithStartHandler(bridge.Started),
		coursechat.WithDoneHandler(bridge.Finished),
	)
	chat := coursechat.NewChat(client, scheduler, courseID)
	return bt.New(chat, bridge, snap, opts...), bridge
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, client *mock.Client) (bt.Model, *bt.Bridge) {
	t.Helper()
	return initModelWithSnapshot(t, client, coursechat.NewSnapshot(courseID, time.Now()))
}

func initModelWithSnapshot(t *testing.T, client *mock.Client, snap coursechat.Snapshot, opts ...bt.Option) (bt.Model, *bt.Bridge) {
	t.Helper()
	m, bridge := newModel(t, client, snap, opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), bridge
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	m, _ = update(t, m, msg)
	return m
}

// update sends a message and returns the updated Model and command.
func update(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// typeText types s into the model one rune at a time.
func typeText(t *testing.T, m bt.Model, s string) bt.Model {
	t.Helper()
	for _, r := range s {
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pump feeds bridged messages into m until the current stream is done.
func pump(t *testing.T, m bt.Model, bridge *bt.Bridge) bt.Model {
	t.Helper()
	for {
		got := make(chan tea.Msg, 1)
		go func() { got <- bt.Listen(bridge)() }()
		select {
		case msg := <-got:
			m = updateModel(t, m, msg)
			if _, ok := msg.(bt.StreamDoneMsg); ok {
				return m
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stream messages")
		}
	}
}

// run executes cmd and feeds its message back into m.
func run(t *testing.T, m bt.Model, cmd tea.Cmd) bt.Model {
	t.Helper()
	require.NotNil(t, cmd)
	return updateModel(t, m, cmd())
}

func answerChunks(text string, end string) []string {
	return []string{
		`data:{"chunk":"` + text + `"}` + "\n\n",
		`data:` + end + "\n\n",
	}
}

func sampleQuestions() []coursechat.Question {
	return []coursechat.Question{
		{
			Text:    "What does TCP guarantee?",
			Options: map[string]string{"a": "Low latency", "b": "Ordered delivery", "c": "Multicast"},
			Correct: "b",
		},
		{
			Text:    "Which layer routes packets?",
			Options: map[string]string{"a": "Link", "b": "Transport", "c": "Network"},
			Correct: "c",
		},
	}
}
