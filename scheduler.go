package coursechat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Scheduler serializes stream consumption so the sink never sees events of
// two answers interleaved.
//
// At most one stream is decoded at a time. A handle submitted while another
// is being decoded waits in a single pending slot; a later submission
// replaces it and the replaced handle is closed without ever being read.
// Last write wins: stale answers are dropped rather than queued.
type Scheduler struct {
	decoder *Decoder
	sink    Sink
	logger  *slog.Logger
	onStart func()
	onDone  func(error)

	mu      sync.Mutex
	active  bool
	pending *submission
	idle    chan struct{} // closed while no stream is active
}

type submission struct {
	ctx    context.Context
	handle Handle
	id     string
}

// SchedulerOption configures a [Scheduler].
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger for stream lifecycle messages.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithStartHandler sets a callback invoked before each stream's first event.
// Views use it to open a fresh answer.
func WithStartHandler(fn func()) SchedulerOption {
	return func(s *Scheduler) { s.onStart = fn }
}

// WithDoneHandler sets a callback invoked after each stream finishes, with
// the error returned by Decode.
func WithDoneHandler(fn func(error)) SchedulerOption {
	return func(s *Scheduler) { s.onDone = fn }
}

// NewScheduler creates an idle Scheduler delivering events to sink.
func NewScheduler(decoder *Decoder, sink Sink, opts ...SchedulerOption) *Scheduler {
	idle := make(chan struct{})
	close(idle)
	s := &Scheduler{
		decoder: decoder,
		sink:    sink,
		logger:  slog.New(slog.DiscardHandler),
		idle:    idle,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit hands h to the scheduler, which takes ownership of it. If no stream
// is active, decoding starts immediately in a new goroutine. Otherwise h
// becomes the pending stream, displacing any handle already pending.
func (s *Scheduler) Submit(ctx context.Context, h Handle) {
	sub := &submission{ctx: ctx, handle: h, id: uuid.NewString()}

	s.mu.Lock()
	if s.active {
		displaced := s.pending
		s.pending = sub
		s.mu.Unlock()
		s.logger.Debug("stream pending", "stream", sub.id)
		if displaced != nil {
			s.logger.Info("discarding pending stream", "stream", displaced.id, "replaced_by", sub.id)
			displaced.handle.Close()
		}
		return
	}
	s.active = true
	s.idle = make(chan struct{})
	s.mu.Unlock()

	go s.run(sub)
}

// Active reports whether a stream is being decoded.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Wait blocks until no stream is active or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run decodes sub and then each handle found in the pending slot, going idle
// once the slot is empty.
func (s *Scheduler) run(sub *submission) {
	for sub != nil {
		s.consume(sub)

		s.mu.Lock()
		sub, s.pending = s.pending, nil
		if sub == nil {
			s.active = false
			close(s.idle)
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) consume(sub *submission) {
	logger := s.logger.With("stream", sub.id)
	logger.Debug("stream started")
	if s.onStart != nil {
		s.onStart()
	}
	err := s.decoder.with(s.decoder.logger.With("stream", sub.id)).Decode(sub.ctx, sub.handle, s.sink)
	if err != nil {
		logger.Warn("stream failed", "error", err)
	} else {
		logger.Debug("stream finished")
	}
	if s.onDone != nil {
		s.onDone(err)
	}
}
