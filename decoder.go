package coursechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Sink receives decoded events one at a time, synchronously, in stream order.
type Sink func(Event)

// recordSeparator delimits records in the response body.
var recordSeparator = []byte("\n\n")

const dataPrefix = "data:"

// transportErrorMessage is what the view shows when the body fails mid-stream.
const transportErrorMessage = "Error reading response stream"

// Decoder turns a Handle into an ordered sequence of Events.
// A Decoder holds no per-stream state and may be reused across streams.
type Decoder struct {
	logger *slog.Logger
}

// DecoderOption configures a [Decoder].
type DecoderOption func(*Decoder)

// WithDecoderLogger sets the logger used for skipped and malformed records.
func WithDecoderLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a Decoder. Without a logger, diagnostics are discarded.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(d)
	}
	return d
}

// with returns a copy of d logging through l.
func (d *Decoder) with(l *slog.Logger) *Decoder {
	return &Decoder{logger: l}
}

// Decode consumes h until it is exhausted, delivering events to sink as soon
// as each record is complete. It always closes h before returning.
//
// Malformed records are logged and skipped. A read failure emits a single
// EventError and ends decoding; the returned error wraps ErrTransport.
// Nothing is emitted after EventEnd, not even for a read failure while the
// rest of the body is drained. Decode returns nil when the handle ends
// normally.
func (d *Decoder) Decode(ctx context.Context, h Handle, sink Sink) error {
	defer h.Close()

	s := &streamState{logger: d.logger, sink: sink}
	for {
		chunk, err := h.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.finish()
			return nil
		}
		if err != nil {
			if s.ended {
				d.logger.Warn("stream read failed after end", "error", err)
				return fmt.Errorf("%w: %w", ErrTransport, err)
			}
			d.logger.Error("stream read failed", "error", err)
			sink(EventError{Message: transportErrorMessage})
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		s.feed(chunk)
	}
}

// streamState is the per-stream decoding state. It lives for one Decode call.
type streamState struct {
	logger  *slog.Logger
	sink    Sink
	pending []byte
	answer  strings.Builder
	ended   bool
}

// feed appends chunk to the pending buffer and dispatches every record that
// is now fully delimited. Splitting on bytes keeps multi-byte runes that
// straddle chunks intact, since '\n' never occurs inside a UTF-8 sequence.
func (s *streamState) feed(chunk []byte) {
	buf := append(s.pending, chunk...)
	for {
		i := bytes.Index(buf, recordSeparator)
		if i < 0 {
			break
		}
		s.record(string(buf[:i]))
		buf = buf[i+len(recordSeparator):]
	}
	s.pending = append(s.pending[:0], buf...)
}

// finish discards an undelimited tail left when the body ends.
func (s *streamState) finish() {
	if tail := strings.TrimSpace(string(s.pending)); tail != "" {
		s.logger.Warn("discarding incomplete record at end of stream", "record", tail)
	}
	s.pending = nil
}

// payload holds the recognised keys of a record. Values stay raw so a
// mistyped key does not invalidate its siblings.
type payload struct {
	Chunk          json.RawMessage `json:"chunk"`
	End            json.RawMessage `json:"end"`
	Error          json.RawMessage `json:"error"`
	IsIrrelevant   json.RawMessage `json:"is_irrelevant"`
	QuestionCount  json.RawMessage `json:"question_count"`
	NextRevisionAt json.RawMessage `json:"next_revision_at"`
	Generate       json.RawMessage `json:"generate_revisions"`
}

func (s *streamState) record(rec string) {
	body, ok := strings.CutPrefix(rec, dataPrefix)
	if !ok {
		s.logger.Debug("ignoring non-data record", "record", rec)
		return
	}
	// Once End is emitted the answer is complete. Later records, server
	// errors included, are only drained.
	if s.ended {
		s.logger.Debug("draining record after end of stream", "record", rec)
		return
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		s.logger.Warn("skipping record", "error", fmt.Errorf("%w: %w", ErrDecode, err), "record", rec)
		return
	}

	if text, ok := s.stringField("chunk", p.Chunk); ok && text != "" {
		s.answer.WriteString(text)
		s.sink(EventContent{Text: s.answer.String()})
	}
	if truthy(p.End) {
		s.ended = true
		s.sink(EventEnd{
			Irrelevant:      truthy(p.IsIrrelevant),
			QuestionCount:   s.intField("question_count", p.QuestionCount),
			NextRevisionAt:  s.intField("next_revision_at", p.NextRevisionAt),
			TriggerRevision: truthy(p.Generate),
		})
	}
	if msg, ok := s.stringField("error", p.Error); ok && msg != "" {
		s.sink(EventError{Message: msg})
	}
}

func (s *streamState) stringField(key string, raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("ignoring non-string field", "key", key, "value", string(raw))
		return "", false
	}
	return v, true
}

func (s *streamState) intField(key string, raw json.RawMessage) *int {
	if isAbsent(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		s.logger.Warn("ignoring non-numeric field", "key", key, "value", string(raw))
		return nil
	}
	n := int(f)
	return &n
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// truthy reports whether a JSON value counts as set: true, a non-zero
// number, a non-empty string, or any object or array.
func truthy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	if v == "" {
		return false
	}
	switch v[0] {
	case 't':
		return v == "true"
	case 'f', 'n':
		return false
	case '"':
		s, err := strconv.Unquote(v)
		return err != nil || s != ""
	case '{', '[':
		return true
	default:
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f != 0
	}
}
