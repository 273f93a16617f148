package coursechat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength bounds a single question, in runes.
const MaxMessageLength = 4000

// ValidateMessage checks a question before it is sent. The server rejects
// empty messages and missing course IDs with a 400; checking locally keeps
// the user message out of the transcript when it would be refused.
func ValidateMessage(courseID, text string) error {
	if strings.TrimSpace(courseID) == "" {
		return fmt.Errorf("course ID is required: %w", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message is empty: %w", ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return fmt.Errorf("message is %d characters, limit is %d: %w", n, MaxMessageLength, ErrValidation)
	}
	return nil
}
