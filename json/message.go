package json

import (
	"fmt"
	"time"

	"github.com/fwojciec/coursechat"
)

// messageDTO is the JSON representation of a Message with a role discriminator.
type messageDTO struct {
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	Error      string    `json:"error,omitempty"`
	Irrelevant bool      `json:"is_irrelevant,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// progressDTO mirrors coursechat.Progress field for field.
type progressDTO struct {
	QuestionCount  int `json:"question_count"`
	NextRevisionAt int `json:"next_revision_at"`
}

// questionDTO uses the server's field names so cached questions read the
// same as the generate_revision response.
type questionDTO struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Correct  string            `json:"correct"`
}

func marshalMessage(m coursechat.Message) (messageDTO, error) {
	switch m.Role {
	case coursechat.RoleUser, coursechat.RoleAssistant:
	default:
		return messageDTO{}, fmt.Errorf("unknown role: %q", m.Role)
	}
	return messageDTO{
		Role:       string(m.Role),
		Text:       m.Text,
		Error:      m.Err,
		Irrelevant: m.Irrelevant,
		Timestamp:  m.Timestamp,
	}, nil
}

func unmarshalMessage(dto messageDTO) (coursechat.Message, error) {
	role := coursechat.Role(dto.Role)
	switch role {
	case coursechat.RoleUser, coursechat.RoleAssistant:
	default:
		return coursechat.Message{}, fmt.Errorf("unknown role: %q", dto.Role)
	}
	return coursechat.Message{
		Role:       role,
		Text:       dto.Text,
		Err:        dto.Error,
		Irrelevant: dto.Irrelevant,
		Timestamp:  dto.Timestamp,
	}, nil
}
