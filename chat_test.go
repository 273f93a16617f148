package coursechat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_Send(t *testing.T) {
	t.Parallel()

	t.Run("streams the answer to the sink", func(t *testing.T) {
		t.Parallel()
		var gotCourse, gotText string
		client := &mock.Client{
			SendMessageFn: func(_ context.Context, courseID, text string) (coursechat.Handle, error) {
				gotCourse, gotText = courseID, text
				return answer("Recursion is..."), nil
			},
		}
		rec := &recorder{}
		s := coursechat.NewScheduler(coursechat.NewDecoder(), rec.sink)
		chat := coursechat.NewChat(client, s, "cs101")

		require.NoError(t, chat.Send(context.Background(), "What is recursion?"))
		waitIdle(t, s)

		assert.Equal(t, "cs101", gotCourse)
		assert.Equal(t, "What is recursion?", gotText)
		assert.Equal(t, []string{"Recursion is...", "end"}, rec.trace())
	})

	t.Run("rejects blank message without calling the server", func(t *testing.T) {
		t.Parallel()
		s := coursechat.NewScheduler(coursechat.NewDecoder(), func(coursechat.Event) {})
		chat := coursechat.NewChat(&mock.Client{}, s, "cs101")

		err := chat.Send(context.Background(), "   ")
		assert.ErrorIs(t, err, coursechat.ErrValidation)
		assert.False(t, s.Active())
	})

	t.Run("wraps server errors", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			SendMessageFn: func(context.Context, string, string) (coursechat.Handle, error) {
				return nil, coursechat.ErrNotAuthenticated
			},
		}
		s := coursechat.NewScheduler(coursechat.NewDecoder(), func(coursechat.Event) {})
		chat := coursechat.NewChat(client, s, "cs101")

		err := chat.Send(context.Background(), "hello")
		assert.ErrorIs(t, err, coursechat.ErrNotAuthenticated)
		assert.False(t, s.Active())
	})
}

func TestChat_Clear(t *testing.T) {
	t.Parallel()

	var got string
	client := &mock.Client{
		ClearChatFn: func(_ context.Context, courseID string) error {
			got = courseID
			return nil
		},
	}
	chat := coursechat.NewChat(client, nil, "cs101")
	require.NoError(t, chat.Clear(context.Background()))
	assert.Equal(t, "cs101", got)
}

func TestChat_Revise(t *testing.T) {
	t.Parallel()

	t.Run("returns questions", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			GenerateRevisionFn: func(context.Context, string) ([]coursechat.Question, error) {
				return sampleQuestions(), nil
			},
		}
		qs, err := coursechat.NewChat(client, nil, "cs101").Revise(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleQuestions(), qs)
	})

	t.Run("no history", func(t *testing.T) {
		t.Parallel()
		client := &mock.Client{
			GenerateRevisionFn: func(context.Context, string) ([]coursechat.Question, error) {
				return nil, coursechat.ErrNoHistory
			},
		}
		_, err := coursechat.NewChat(client, nil, "cs101").Revise(context.Background())
		assert.ErrorIs(t, err, coursechat.ErrNoHistory)
	})
}

func TestChat_Record(t *testing.T) {
	t.Parallel()

	var got coursechat.Answer
	boom := errors.New("boom")
	client := &mock.Client{
		RecordAnswerFn: func(_ context.Context, a coursechat.Answer) error {
			got = a
			return boom
		},
	}
	err := coursechat.NewChat(client, nil, "cs101").Record(context.Background(), coursechat.Answer{QuestionIndex: 2, Selected: "d"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, coursechat.Answer{CourseID: "cs101", QuestionIndex: 2, Selected: "d"}, got)
}
