package flask

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/fwojciec/coursechat"
)

// Interface compliance check.
var _ coursechat.Client = (*Client)(nil)

// Client talks to the tutor server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the server URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets the HTTP client. A client without a cookie jar is
// given one, since the session lives in a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client].
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		// cookiejar.New only fails for a non-nil PublicSuffixList.
		jar, _ := cookiejar.New(nil)
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}
	return c
}

// Login signs in with the login form. The server answers a successful
// login with a redirect to the course list and anything else with a
// redirect back to the start page.
func (c *Client) Login(ctx context.Context, user, password string) error {
	form := url.Values{"username": {user}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("flask: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Inspect the redirect rather than following it.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("flask: login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return fmt.Errorf("flask: login: HTTP %d", resp.StatusCode)
	}
	loc, err := resp.Location()
	if err != nil || loc.Path != coursesPath {
		return fmt.Errorf("flask: login rejected for %q: %w", user, coursechat.ErrNotAuthenticated)
	}
	c.logger.Info("logged in", "user", user)
	return nil
}

// SendMessage posts a question and returns the answer body as a Handle.
func (c *Client) SendMessage(ctx context.Context, courseID, text string) (coursechat.Handle, error) {
	resp, err := c.post(ctx, sendMessagePath, sendMessageRequest{Message: text, CourseID: courseID})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	c.logger.Debug("answer stream opened", "course", courseID)
	return coursechat.NewReaderHandle(resp.Body), nil
}

// ClearChat drops the history and question count of the course.
func (c *Client) ClearChat(ctx context.Context, courseID string) error {
	_, err := c.call(ctx, clearChatPath, courseRequest{CourseID: courseID})
	return err
}

// GenerateRevision asks the server for a fresh set of revision questions.
func (c *Client) GenerateRevision(ctx context.Context, courseID string) ([]coursechat.Question, error) {
	res, err := c.call(ctx, generateRevisionPath, courseRequest{CourseID: courseID})
	if err != nil {
		return nil, err
	}
	qs := make([]coursechat.Question, len(res.RevisionQuestions))
	for i, q := range res.RevisionQuestions {
		qs[i] = coursechat.Question{Text: q.Question, Options: q.Options, Correct: q.Correct}
	}
	return qs, nil
}

// RecordAnswer reports a checked quiz answer.
func (c *Client) RecordAnswer(ctx context.Context, a coursechat.Answer) error {
	resp, err := c.post(ctx, recordAnswerPath, recordAnswerRequest{
		CourseID:       a.CourseID,
		QuestionIndex:  a.QuestionIndex,
		SelectedAnswer: a.Selected,
		IsCorrect:      a.Correct,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("flask: record answer: HTTP %d", resp.StatusCode)
	}
	return nil
}

// call posts body to a JSON endpoint and decodes the result envelope.
func (c *Client) call(ctx context.Context, path string, body any) (*apiResult, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp)
	}
	var res apiResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("flask: %s: decode response: %w", path, err)
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("flask: %s: %s", path, msg)
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("flask: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flask: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flask: %s: %w", path, err)
	}
	return resp, nil
}

// parseHTTPError maps a non-200 response to an error, using the server's
// {"error": ...} body when present.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("flask: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	msg := strings.TrimSpace(string(body))
	var res apiResult
	if json.Unmarshal(body, &res) == nil && res.Error != "" {
		msg = res.Error
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = coursechat.ErrNotAuthenticated
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "no chat history"):
		sentinel = coursechat.ErrNoHistory
	}
	if sentinel != nil {
		return fmt.Errorf("flask: HTTP %d: %s: %w", resp.StatusCode, msg, sentinel)
	}
	return fmt.Errorf("flask: HTTP %d: %s", resp.StatusCode, msg)
}
