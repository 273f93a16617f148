package mock

import (
	"context"
	"io"
	"sync"

	"github.com/fwojciec/coursechat"
)

// Interface compliance checks.
var (
	_ coursechat.Handle = (*Handle)(nil)
	_ coursechat.Handle = (*ChunkHandle)(nil)
)

// Handle is a test double for coursechat.Handle.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because consumers always close handles.
type Handle struct {
	NextFn  func(ctx context.Context) ([]byte, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (h *Handle) Next(ctx context.Context) ([]byte, error) {
	return h.NextFn(ctx)
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (h *Handle) Close() error {
	if h.CloseFn == nil {
		return nil
	}
	return h.CloseFn()
}

// ChunkHandle replays fixed chunks and then reports io.EOF, or Err if set.
type ChunkHandle struct {
	Chunks []string
	Err    error

	mu     sync.Mutex
	next   int
	closed bool
	reads  int
}

// NewChunkHandle returns a ChunkHandle replaying chunks.
func NewChunkHandle(chunks ...string) *ChunkHandle {
	return &ChunkHandle{Chunks: chunks}
}

// Next returns the next chunk.
func (h *ChunkHandle) Next(ctx context.Context) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reads++
	if h.next < len(h.Chunks) {
		c := h.Chunks[h.next]
		h.next++
		return []byte(c), nil
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return nil, io.EOF
}

// Close marks the handle closed.
func (h *ChunkHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close was called.
func (h *ChunkHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Reads reports how many times Next was called.
func (h *ChunkHandle) Reads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reads
}
