// Package bubbletea provides the Bubble Tea TUI for coursechat.
//
// The view is the scheduler's sink: a [Bridge] forwards decoded events and
// stream lifecycle callbacks into the program as messages, in the order the
// scheduler produced them.
package bubbletea

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coursechat"
)

// Run creates and runs the Bubble Tea program and returns the final model.
// It blocks until the program exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-stop:
		}
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// StreamStartMsg signals that the scheduler began decoding an answer.
type StreamStartMsg struct{}

// StreamEventMsg wraps a decoded event for delivery to the model.
type StreamEventMsg struct {
	Event coursechat.Event
}

// StreamDoneMsg signals that the current answer stream finished.
type StreamDoneMsg struct {
	Err error
}

// Bridge carries scheduler callbacks into the Bubble Tea event loop. Wire
// Sink, Started and Finished into [coursechat.NewScheduler].
type Bridge struct {
	msgs chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge creates an open Bridge.
func NewBridge() *Bridge {
	return &Bridge{
		msgs: make(chan tea.Msg, 256),
		done: make(chan struct{}),
	}
}

// Sink is a [coursechat.Sink] forwarding events to the model.
func (b *Bridge) Sink(e coursechat.Event) { b.send(StreamEventMsg{Event: e}) }

// Started is a scheduler start handler.
func (b *Bridge) Started() { b.send(StreamStartMsg{}) }

// Finished is a scheduler done handler.
func (b *Bridge) Finished(err error) { b.send(StreamDoneMsg{Err: err}) }

// Close stops delivery. Pending and later messages are dropped so the
// scheduler never blocks on an exited program.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	if b.closed() {
		return
	}
	select {
	case b.msgs <- msg:
	case <-b.done:
	}
}

func (b *Bridge) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// listen waits for the next bridged message.
func (b *Bridge) listen() tea.Cmd {
	return func() tea.Msg {
		if b.closed() {
			return nil
		}
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.done:
			return nil
		}
	}
}
