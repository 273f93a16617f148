package coursechat

import (
	"context"
	"sort"
)

// Client is the tutor server as seen by the chat view. Implementations live
// in subpackages named after the transport (see package flask).
type Client interface {
	// SendMessage posts a question and returns the streamed answer. The
	// caller owns the returned Handle.
	SendMessage(ctx context.Context, courseID, text string) (Handle, error)

	// ClearChat drops the server-side history and counters for the course.
	ClearChat(ctx context.Context, courseID string) error

	// GenerateRevision asks the server to (re)build the revision questions
	// from the chat history. Returns ErrNoHistory when nothing was asked yet.
	GenerateRevision(ctx context.Context, courseID string) ([]Question, error)

	// RecordAnswer reports a checked quiz answer.
	RecordAnswer(ctx context.Context, a Answer) error
}

// Question is a multiple-choice revision question.
type Question struct {
	Text    string
	Options map[string]string // option key ("a".."d") to option text
	Correct string            // key of the correct option
}

// Keys returns the option keys in display order.
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Answer is a checked quiz answer as reported to the server.
type Answer struct {
	CourseID      string
	QuestionIndex int
	Selected      string
	Correct       bool
}
