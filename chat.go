package coursechat

import (
	"context"
	"fmt"
)

// Chat connects a view to the tutor server for one course. Answers are not
// returned to the caller: they stream through the scheduler to its sink.
type Chat struct {
	client    Client
	scheduler *Scheduler
	courseID  string
}

// NewChat creates a Chat for courseID.
func NewChat(client Client, scheduler *Scheduler, courseID string) *Chat {
	return &Chat{client: client, scheduler: scheduler, courseID: courseID}
}

// CourseID returns the course this chat talks about.
func (c *Chat) CourseID() string { return c.courseID }

// Send validates and posts a question, then submits the response stream to
// the scheduler. It returns once the server has accepted the question.
// ctx must outlive the answer: it also governs reading the stream.
func (c *Chat) Send(ctx context.Context, text string) error {
	if err := ValidateMessage(c.courseID, text); err != nil {
		return err
	}
	h, err := c.client.SendMessage(ctx, c.courseID, text)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	c.scheduler.Submit(ctx, h)
	return nil
}

// Clear drops the course history on the server.
func (c *Chat) Clear(ctx context.Context) error {
	if err := c.client.ClearChat(ctx, c.courseID); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	return nil
}

// Revise fetches a new set of revision questions.
func (c *Chat) Revise(ctx context.Context) ([]Question, error) {
	qs, err := c.client.GenerateRevision(ctx, c.courseID)
	if err != nil {
		return nil, fmt.Errorf("generate revision: %w", err)
	}
	return qs, nil
}

// Record reports a checked quiz answer.
func (c *Chat) Record(ctx context.Context, a Answer) error {
	a.CourseID = c.courseID
	if err := c.client.RecordAnswer(ctx, a); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}
