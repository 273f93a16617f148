package coursechat

// Event is a sealed interface representing a decoded stream event.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContent carries the whole answer received so far, not only the
// latest fragment. Views re-render the full text on every event.
type EventContent struct {
	Text string
}

func (EventContent) event() {}

// EventEnd is the terminal event of a stream. It is emitted at most once
// and no EventContent for the same stream follows it.
type EventEnd struct {
	// Irrelevant is set when the server judged the question off-topic for
	// the course. Such questions are not counted.
	Irrelevant bool

	// QuestionCount and NextRevisionAt are nil when the server omitted them.
	QuestionCount  *int
	NextRevisionAt *int

	// TriggerRevision asks the client to fetch fresh revision questions.
	TriggerRevision bool
}

func (EventEnd) event() {}

// EventError reports a server-signaled error or a transport failure.
// It does not imply that an EventEnd was or will be sent.
type EventError struct {
	Message string
}

func (EventError) event() {}

// Interface compliance checks.
var (
	_ Event = EventContent{}
	_ Event = EventEnd{}
	_ Event = EventError{}
)
