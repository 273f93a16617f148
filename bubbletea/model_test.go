package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/coursechat"
	bt "github.com/fwojciec/coursechat/bubbletea"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("fresh snapshot starts idle", func(t *testing.T) {
		t.Parallel()
		m, _ := newModel(t, &mock.Client{}, coursechat.NewSnapshot(courseID, time.Now()))

		assert.False(t, m.Streaming())
		assert.False(t, m.QuizFocused())
		assert.NoError(t, m.Err())
		assert.Equal(t, coursechat.Progress{NextRevisionAt: 5}, m.Progress())
		assert.Equal(t, "Initializing...", m.View())
	})

	t.Run("revision schedule sets first revision", func(t *testing.T) {
		t.Parallel()
		m, _ := newModel(t, &mock.Client{}, coursechat.NewSnapshot(courseID, time.Now()),
			bt.WithRevisionSchedule(coursechat.RevisionSchedule{Every: 3, Overlap: 1}))

		assert.Equal(t, 3, m.Progress().NextRevisionAt)
	})

	t.Run("restores snapshot", func(t *testing.T) {
		t.Parallel()
		snap := coursechat.NewSnapshot(courseID, time.Now())
		snap.Messages = []coursechat.Message{
			{Role: coursechat.RoleUser, Text: "hello there"},
			{Role: coursechat.RoleAssistant, Text: "Hi! How can I help?"},
		}
		snap.Progress = coursechat.Progress{QuestionCount: 2, NextRevisionAt: 5}
		snap.Questions = sampleQuestions()

		m, _ := initModelWithSnapshot(t, &mock.Client{}, snap)

		content := bt.RenderContent(m)
		assert.Contains(t, content, "> hello there")
		assert.Contains(t, content, "Hi! How can I help?")
		assert.Contains(t, content, "Q1. What does TCP guarantee?")
		assert.Contains(t, m.View(), "Questions: 2 · Next revision at 5")
	})
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size sizes viewport", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})

		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("resize re-renders content", func(t *testing.T) {
		t.Parallel()
		snap := coursechat.NewSnapshot(courseID, time.Now())
		snap.Messages = []coursechat.Message{
			{Role: coursechat.RoleAssistant, Text: "word1 word2 word3 word4 word5 word6 word7 word8"},
		}
		m, _ := newModel(t, &mock.Client{}, snap)
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 30, Height: 20})
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

		found := false
		for _, line := range strings.Split(m.Viewport.View(), "\n") {
			if strings.Contains(line, "word1") && strings.Contains(line, "word8") {
				found = true
			}
		}
		assert.True(t, found, "expected one line after widening, got:\n%s", m.Viewport.View())
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("enter with blank input does nothing", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		m = typeText(t, m, "   ")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Nil(t, cmd)
		assert.NotContains(t, bt.RenderContent(m), ">")
	})

	t.Run("help shown when idle", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		assert.Contains(t, m.View(), "Questions: 0 · Next revision at 5  Enter send")
	})
}

func TestModel_Send(t *testing.T) {
	t.Parallel()

	t.Run("question streams answer through scheduler", func(t *testing.T) {
		t.Parallel()
		var gotCourse, gotText string
		client := &mock.Client{
			SendMessageFn: func(_ context.Context, course, text string) (coursechat.Handle, error) {
				gotCourse, gotText = course, text
				return mock.NewChunkHandle(answerChunks(
					"TCP is **reliable**.",
					`{"end":true,"question_count":1,"next_revision_at":5}`,
				)...), nil
			},
		}
		m, bridge := initModel(t, client)
		m = typeText(t, m, "What is TCP?")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Empty(t, m.Input.Value())
		assert.Contains(t, bt.RenderContent(m), "> What is TCP?")
		assert.Contains(t, m.View(), "Thinking...")

		m = run(t, m, cmd)
		assert.Equal(t, courseID, gotCourse)
		assert.Equal(t, "What is TCP?", gotText)

		m = pump(t, m, bridge)
		assert.False(t, m.Streaming())
		assert.NoError(t, m.Err())
		assert.Equal(t, coursechat.Progress{QuestionCount: 1, NextRevisionAt: 5}, m.Progress())

		content := bt.RenderContent(m)
		assert.Contains(t, content, "TCP is reliable.")
		assert.Less(t, strings.Index(content, "What is TCP?"), strings.Index(content, "TCP is reliable."))
		assert.Contains(t, m.View(), "Questions: 1")
	})

	t.Run("send failure keeps question and shows error", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
				return nil, coursechat.ErrNotAuthenticated
			},
		}
		m, _ := initModel(t, client)
		m = typeText(t, m, "hello")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = run(t, m, cmd)

		assert.ErrorIs(t, m.Err(), coursechat.ErrNotAuthenticated)
		assert.Contains(t, m.View(), "Error: send message: not authenticated")
		assert.Contains(t, bt.RenderContent(m), "> hello")
	})

	t.Run("next question clears previous error", func(t *testing.T) {
		t.Parallel()
		calls := 0
		client := &mock.Client{
			SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("boom")
				}
				return mock.NewChunkHandle(), nil
			},
		}
		m, bridge := initModel(t, client)
		m = typeText(t, m, "one")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = run(t, m, cmd)
		require.Error(t, m.Err())

		m = typeText(t, m, "two")
		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.NoError(t, m.Err())
		m = run(t, m, cmd)
		m = pump(t, m, bridge)
		assert.NoError(t, m.Err())
	})
}

func TestModel_Stream(t *testing.T) {
	t.Parallel()

	t.Run("events fill the open answer", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		m = updateModel(t, m, bt.StreamStartMsg{})

		assert.True(t, m.Streaming())
		assert.Contains(t, bt.RenderContent(m), "…")
		assert.Contains(t, m.View(), "Answering...")

		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "Hello"}})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "Hello world"}})
		assert.Contains(t, bt.RenderContent(m), "Hello world")

		n := 3
		next := 5
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventEnd{QuestionCount: &n, NextRevisionAt: &next}})
		m = updateModel(t, m, bt.StreamDoneMsg{})

		assert.False(t, m.Streaming())
		assert.Equal(t, coursechat.Progress{QuestionCount: 3, NextRevisionAt: 5}, m.Progress())
		assert.Contains(t, m.View(), "Questions: 3 · Next revision at 5")
	})

	t.Run("off-topic answer drops question", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
			return mock.NewChunkHandle(), nil
		}})
		m = typeText(t, m, "what is the weather?")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = updateModel(t, m, bt.StreamStartMsg{})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "Please stay on topic."}})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventEnd{Irrelevant: true}})
		m = updateModel(t, m, bt.StreamDoneMsg{})

		content := bt.RenderContent(m)
		assert.Contains(t, content, "Not course-related")
		assert.Contains(t, content, "Please stay on topic.")
		assert.NotContains(t, content, "weather")
		assert.Equal(t, coursechat.Progress{NextRevisionAt: 5}, m.Progress())
	})

	t.Run("transport failure annotates answer and is logged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		snap := coursechat.NewSnapshot(courseID, time.Now())
		m, _ := initModelWithSnapshot(t, &mock.Client{}, snap,
			bt.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		m = updateModel(t, m, bt.StreamStartMsg{})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "partial"}})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventError{Message: "Error reading response stream"}})
		m = updateModel(t, m, bt.StreamDoneMsg{Err: coursechat.ErrTransport})

		assert.False(t, m.Streaming())
		assert.NoError(t, m.Err())
		content := bt.RenderContent(m)
		assert.Contains(t, content, "partial")
		assert.Contains(t, content, "Error reading response stream")
		assert.Contains(t, logs.String(), "answer stream failed")
	})

	t.Run("cancelled stream is not logged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		snap := coursechat.NewSnapshot(courseID, time.Now())
		m, _ := initModelWithSnapshot(t, &mock.Client{}, snap,
			bt.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		m = updateModel(t, m, bt.StreamStartMsg{})
		updateModel(t, m, bt.StreamDoneMsg{Err: context.Canceled})
		assert.Empty(t, logs.String())
	})

	t.Run("events without open answer are ignored", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "stray"}})
		assert.NotContains(t, bt.RenderContent(m), "stray")
	})
}

func TestModel_Revision(t *testing.T) {
	t.Parallel()

	t.Run("ctrl+g shows generated questions", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			GenerateRevisionFn: func(_ context.Context, course string) ([]coursechat.Question, error) {
				assert.Equal(t, courseID, course)
				return sampleQuestions(), nil
			},
		}
		m, _ := initModel(t, client)
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
		assert.Contains(t, m.View(), "Generating revision questions...")

		// A second request while one is running is ignored.
		_, again := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
		assert.Nil(t, again)

		m = run(t, m, cmd)
		assert.True(t, m.Quiz().Visible())
		content := bt.RenderContent(m)
		assert.Contains(t, content, "Revision questions")
		assert.Contains(t, content, "Q2. Which layer routes packets?")
		assert.NotContains(t, m.View(), "Generating")
	})

	t.Run("no history shows friendly error", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			GenerateRevisionFn: func(context.Context, string) ([]coursechat.Question, error) {
				return nil, coursechat.ErrNoHistory
			},
		}
		m, _ := initModel(t, client)
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
		m = run(t, m, cmd)

		require.Error(t, m.Err())
		assert.Contains(t, m.View(), "Error: ask a question before generating revision questions")
		assert.False(t, m.Quiz().Visible())
	})
}

func TestModel_Quiz(t *testing.T) {
	t.Parallel()

	quizModel := func(t *testing.T, client *mock.Client) bt.Model {
		t.Helper()
		snap := coursechat.NewSnapshot(courseID, time.Now())
		snap.Questions = sampleQuestions()
		m, _ := initModelWithSnapshot(t, client, snap)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		require.True(t, m.QuizFocused())
		return m
	}

	t.Run("tab without questions keeps input focus", func(t *testing.T) {
		t.Parallel()
		m, _ := initModel(t, &mock.Client{})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		assert.False(t, m.QuizFocused())
	})

	t.Run("correct answer is recorded", func(t *testing.T) {
		t.Parallel()
		var got coursechat.Answer
		m := quizModel(t, &mock.Client{
			RecordAnswerFn: func(_ context.Context, a coursechat.Answer) error {
				got = a
				return nil
			},
		})
		m = updateModel(t, m, key("b"))
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = run(t, m, cmd)

		assert.Equal(t, coursechat.Answer{CourseID: courseID, QuestionIndex: 0, Selected: "b", Correct: true}, got)
		assert.Equal(t, coursechat.QuestionCorrect, m.Quiz().Items[0].State)
		assert.Contains(t, bt.RenderContent(m), "✓ Correct!")
	})

	t.Run("wrong answer can be retried", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyDown})
		m = updateModel(t, m, key("a"))
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = run(t, m, cmd)

		assert.Equal(t, coursechat.QuestionIncorrect, m.Quiz().Items[1].State)
		assert.Contains(t, bt.RenderContent(m), "✗ Incorrect. Press r to try again.")

		m = updateModel(t, m, key("r"))
		assert.Equal(t, coursechat.QuestionOpen, m.Quiz().Items[1].State)
		assert.Empty(t, m.Quiz().Items[1].Selected)
	})

	t.Run("check without selection shows error", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Nil(t, cmd)
		assert.ErrorIs(t, m.Err(), coursechat.ErrNoSelection)
	})

	t.Run("unknown option is rejected", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m = updateModel(t, m, key("d"))

		assert.ErrorIs(t, m.Err(), coursechat.ErrValidation)
		assert.Empty(t, m.Quiz().Items[0].Selected)
	})

	t.Run("cursor stays within questions", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Contains(t, bt.RenderContent(m), "▸ Q1.")

		for range 3 {
			m = updateModel(t, m, key("j"))
		}
		assert.Contains(t, bt.RenderContent(m), "▸ Q2.")
	})

	t.Run("esc returns to input", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.QuizFocused())

		m = typeText(t, m, "abc")
		assert.Equal(t, "abc", m.Input.Value())
	})

	t.Run("quiz keys do not reach input", func(t *testing.T) {
		t.Parallel()
		m := quizModel(t, &mock.Client{})
		m = updateModel(t, m, key("a"))
		assert.Empty(t, m.Input.Value())
	})

	t.Run("failed recording is logged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		snap := coursechat.NewSnapshot(courseID, time.Now())
		snap.Questions = sampleQuestions()
		m, _ := initModelWithSnapshot(t, &mock.Client{
			RecordAnswerFn: func(context.Context, coursechat.Answer) error { return errors.New("offline") },
		}, snap, bt.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m = updateModel(t, m, key("b"))
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = run(t, m, cmd)

		assert.NoError(t, m.Err())
		assert.Contains(t, logs.String(), "recording quiz answer failed")
	})
}

func TestModel_Clear(t *testing.T) {
	t.Parallel()

	cleared := func() coursechat.Snapshot {
		snap := coursechat.NewSnapshot(courseID, time.Now())
		snap.Messages = []coursechat.Message{
			{Role: coursechat.RoleUser, Text: "old question"},
			{Role: coursechat.RoleAssistant, Text: "old answer"},
		}
		snap.Progress = coursechat.Progress{QuestionCount: 4, NextRevisionAt: 5}
		snap.Questions = sampleQuestions()
		return snap
	}

	t.Run("confirmed clear resets conversation", func(t *testing.T) {
		t.Parallel()
		var gotCourse string
		client := &mock.Client{
			ClearChatFn: func(_ context.Context, course string) error {
				gotCourse = course
				return nil
			},
		}
		m, _ := initModelWithSnapshot(t, client, cleared())
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
		assert.Nil(t, cmd)
		assert.Contains(t, m.View(), "Clear chat history? (y/n)")

		m, cmd = update(t, m, key("y"))
		m = run(t, m, cmd)

		assert.Equal(t, courseID, gotCourse)
		content := bt.RenderContent(m)
		assert.Contains(t, content, coursechat.ClearedGreeting)
		assert.NotContains(t, content, "old question")
		assert.False(t, m.Quiz().Visible())
		assert.Equal(t, coursechat.Progress{NextRevisionAt: 5}, m.Progress())
	})

	t.Run("declined clear keeps conversation", func(t *testing.T) {
		t.Parallel()
		m, _ := initModelWithSnapshot(t, &mock.Client{}, cleared())
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
		m, cmd := update(t, m, key("n"))

		assert.Nil(t, cmd)
		assert.NotContains(t, m.View(), "Clear chat history?")
		assert.Contains(t, bt.RenderContent(m), "old question")
	})

	t.Run("other keys wait for an answer", func(t *testing.T) {
		t.Parallel()
		m, _ := initModelWithSnapshot(t, &mock.Client{}, cleared())
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
		m = updateModel(t, m, key("x"))

		assert.Contains(t, m.View(), "Clear chat history? (y/n)")
		assert.Empty(t, m.Input.Value())
	})

	t.Run("server failure keeps conversation", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			ClearChatFn: func(context.Context, string) error { return coursechat.ErrNotAuthenticated },
		}
		m, _ := initModelWithSnapshot(t, client, cleared())
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
		m, cmd := update(t, m, key("y"))
		m = run(t, m, cmd)

		assert.ErrorIs(t, m.Err(), coursechat.ErrNotAuthenticated)
		assert.Contains(t, bt.RenderContent(m), "old question")
	})
}

func TestModel_Snapshot(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := coursechat.NewSnapshot(courseID, created)
	snap.Questions = sampleQuestions()
	m, _ := initModelWithSnapshot(t, &mock.Client{}, snap)

	m = typeText(t, m, "What is UDP?")
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = updateModel(t, m, bt.StreamStartMsg{})
	m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "Connectionless."}})
	n := 1
	m = updateModel(t, m, bt.StreamEventMsg{Event: coursechat.EventEnd{QuestionCount: &n}})
	m = updateModel(t, m, bt.StreamDoneMsg{})

	got := m.Snapshot()
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, courseID, got.CourseID)
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created))
	require.Len(t, got.Messages, 2)
	assert.Equal(t, coursechat.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "What is UDP?", got.Messages[0].Text)
	assert.Equal(t, "Connectionless.", got.Messages[1].Text)
	assert.Equal(t, coursechat.Progress{QuestionCount: 1, NextRevisionAt: 5}, got.Progress)
	assert.Equal(t, sampleQuestions(), got.Questions)
}

func TestBridge(t *testing.T) {
	t.Parallel()

	t.Run("delivers in order", func(t *testing.T) {
		t.Parallel()
		b := bt.NewBridge()
		defer b.Close()

		b.Started()
		b.Sink(coursechat.EventContent{Text: "a"})
		b.Finished(nil)

		listen := bt.Listen(b)
		assert.Equal(t, bt.StreamStartMsg{}, listen())
		assert.Equal(t, bt.StreamEventMsg{Event: coursechat.EventContent{Text: "a"}}, listen())
		assert.Equal(t, bt.StreamDoneMsg{}, listen())
	})

	t.Run("close unblocks senders and listeners", func(t *testing.T) {
		t.Parallel()
		b := bt.NewBridge()
		b.Close()
		b.Close()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				b.Sink(coursechat.EventContent{Text: "x"})
			}
		}()
		wg.Wait()
		assert.Nil(t, bt.Listen(b)())
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("question and streamed answer", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
				return mock.NewChunkHandle(answerChunks(
					"Hello!",
					`{"end":true,"question_count":1,"next_revision_at":5}`,
				)...), nil
			},
		}
		m, _ := newModel(t, client, coursechat.NewSnapshot(courseID, time.Now()))

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello!")) &&
				bytes.Contains(out, []byte("Questions: 1"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Streaming())
		assert.NoError(t, final.Err())
		snap := final.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.Equal(t, "hi", snap.Messages[0].Text)
		assert.Equal(t, "Hello!", snap.Messages[1].Text)
	})

	t.Run("revision triggered by answer", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
				return mock.NewChunkHandle(answerChunks(
					"Done.",
					`{"end":true,"question_count":5,"next_revision_at":8,"generate_revisions":true}`,
				)...), nil
			},
			GenerateRevisionFn: func(context.Context, string) ([]coursechat.Question, error) {
				return sampleQuestions(), nil
			},
		}
		m, _ := newModel(t, client, coursechat.NewSnapshot(courseID, time.Now()))

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 40),
		)

		tm.Type("fifth")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Revision questions"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.Len(t, final.Quiz().Items, 2)
		assert.Equal(t, coursechat.Progress{QuestionCount: 5, NextRevisionAt: 8}, final.Progress())
	})
}
