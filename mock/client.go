// Package mock provides test doubles for coursechat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/coursechat"
)

// Interface compliance check.
var _ coursechat.Client = (*Client)(nil)

// Client is a test double for coursechat.Client.
// Set the function fields for the methods you need.
type Client struct {
	SendMessageFn      func(ctx context.Context, courseID, text string) (coursechat.Handle, error)
	ClearChatFn        func(ctx context.Context, courseID string) error
	GenerateRevisionFn func(ctx context.Context, courseID string) ([]coursechat.Question, error)
	RecordAnswerFn     func(ctx context.Context, a coursechat.Answer) error
}

// SendMessage delegates to SendMessageFn.
func (c *Client) SendMessage(ctx context.Context, courseID, text string) (coursechat.Handle, error) {
	return c.SendMessageFn(ctx, courseID, text)
}

// ClearChat delegates to ClearChatFn.
func (c *Client) ClearChat(ctx context.Context, courseID string) error {
	return c.ClearChatFn(ctx, courseID)
}

// GenerateRevision delegates to GenerateRevisionFn.
func (c *Client) GenerateRevision(ctx context.Context, courseID string) ([]coursechat.Question, error) {
	return c.GenerateRevisionFn(ctx, courseID)
}

// RecordAnswer delegates to RecordAnswerFn. Returns nil when RecordAnswerFn
// is not set, since views report answers fire-and-forget.
func (c *Client) RecordAnswer(ctx context.Context, a coursechat.Answer) error {
	if c.RecordAnswerFn == nil {
		return nil
	}
	return c.RecordAnswerFn(ctx, a)
}
