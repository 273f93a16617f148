package coursechat

import (
	"context"
	"io"
)

// Handle is a single-use, sequential source of raw response chunks.
//
// Next blocks until the next chunk is available and returns io.EOF once
// the source is exhausted. Any other error is a transport failure. A Handle
// is owned by exactly one consumer at a time; Close releases the underlying
// connection and is safe to call more than once.
type Handle interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// defaultChunkSize bounds a single read from a response body.
const defaultChunkSize = 32 * 1024

// readerHandle adapts an HTTP response body to a Handle.
type readerHandle struct {
	body   io.ReadCloser
	buf    []byte
	err    error // deferred error from a read that also returned data
	closed bool
}

// Interface compliance check.
var _ Handle = (*readerHandle)(nil)

// NewReaderHandle wraps body as a Handle. Each call to Next performs at
// most one Read, so chunk boundaries follow the transport.
func NewReaderHandle(body io.ReadCloser) Handle {
	return &readerHandle{body: body, buf: make([]byte, defaultChunkSize)}
}

func (h *readerHandle) Next(ctx context.Context) ([]byte, error) {
	if h.err != nil {
		return nil, h.err
	}
	if h.closed {
		return nil, io.ErrClosedPipe
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		n, err := h.body.Read(h.buf)
		if n > 0 {
			// io.Reader may return data together with an error; surface the
			// data now and the error on the following call.
			h.err = err
			return append([]byte(nil), h.buf[:n]...), nil
		}
		if err != nil {
			h.err = err
			return nil, err
		}
	}
}

func (h *readerHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.body.Close()
}
