package coursechat

import "time"

// ClearedGreeting is the assistant message shown after the history is cleared.
const ClearedGreeting = "Chat history has been cleared. How can I help you with your studies?"

// Message is one entry of the conversation as displayed.
type Message struct {
	Role       Role
	Text       string
	Err        string // error shown beneath the text, if any
	Irrelevant bool   // answer to an off-topic question
	Timestamp  time.Time
}

// Transcript is the ordered conversation for one course. Streamed answers
// are applied to the open assistant message, opened by BeginAssistant.
type Transcript struct {
	Messages []Message
	open     int // index of the open assistant message, -1 when none
}

// NewTranscript returns an empty Transcript holding msgs, for example ones
// restored from a cache.
func NewTranscript(msgs ...Message) *Transcript {
	return &Transcript{Messages: msgs, open: -1}
}

// AddUser appends a user question.
func (t *Transcript) AddUser(text string, at time.Time) {
	t.Messages = append(t.Messages, Message{Role: RoleUser, Text: text, Timestamp: at})
}

// BeginAssistant opens an empty assistant message for the next stream,
// closing any message still open.
func (t *Transcript) BeginAssistant(at time.Time) {
	t.Messages = append(t.Messages, Message{Role: RoleAssistant, Timestamp: at})
	t.open = len(t.Messages) - 1
}

// Open reports whether an assistant message is receiving a stream.
func (t *Transcript) Open() bool { return t.open >= 0 }

// OpenIndex returns the index of the open assistant message, or -1.
func (t *Transcript) OpenIndex() int { return t.open }

// Apply updates the open assistant message with a stream event. Events
// arriving with no open message are ignored.
func (t *Transcript) Apply(evt Event) {
	if t.open < 0 {
		return
	}
	switch e := evt.(type) {
	case EventContent:
		t.Messages[t.open].Text = e.Text
	case EventError:
		t.Messages[t.open].Err = e.Message
	case EventEnd:
		if e.Irrelevant {
			t.Messages[t.open].Irrelevant = true
			t.dropQuestion(t.open)
		}
		t.open = -1
	}
}

// Finish closes the open assistant message. Streams that end without an
// EventEnd, such as after a transport failure, are closed this way.
func (t *Transcript) Finish() { t.open = -1 }

// Clear resets the conversation to the post-clear greeting.
func (t *Transcript) Clear(at time.Time) {
	t.Messages = []Message{{Role: RoleAssistant, Text: ClearedGreeting, Timestamp: at}}
	t.open = -1
}

// dropQuestion removes the latest user message before index i. Off-topic
// questions are not kept in the history.
func (t *Transcript) dropQuestion(i int) {
	for j := i - 1; j >= 0; j-- {
		if t.Messages[j].Role != RoleUser {
			continue
		}
		t.Messages = append(t.Messages[:j], t.Messages[j+1:]...)
		if t.open > j {
			t.open--
		}
		return
	}
}
