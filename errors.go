package coursechat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation before it was sent.
	ErrValidation = errors.New("validation error")

	// ErrDecode indicates a single stream record could not be parsed.
	// Decoding recovers from it by skipping the record.
	ErrDecode = errors.New("malformed stream record")

	// ErrTransport indicates the response body failed mid-stream.
	ErrTransport = errors.New("stream transport error")

	// ErrNotAuthenticated indicates the server rejected the session cookie.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoHistory indicates revision questions were requested before any
	// question was asked in the course.
	ErrNoHistory = errors.New("no chat history")

	// ErrQuestionNotFound indicates a quiz operation referenced an index
	// outside the current question set.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrNoSelection indicates an answer was checked before an option was chosen.
	ErrNoSelection = errors.New("no option selected")
)
