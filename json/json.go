// Package json persists course chat snapshots as JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/coursechat"
)

const currentVersion = 1

// envelope is the v1 wire format for a persisted snapshot.
type envelope struct {
	Version   int           `json:"version"`
	ID        string        `json:"id"`
	CourseID  string        `json:"course_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []messageDTO  `json:"messages"`
	Progress  progressDTO   `json:"progress"`
	Questions []questionDTO `json:"revision_questions,omitempty"`
}

// MarshalSnapshot serializes a Snapshot in v1 envelope format.
func MarshalSnapshot(s coursechat.Snapshot) ([]byte, error) {
	env := envelope{
		Version:   currentVersion,
		ID:        s.ID,
		CourseID:  s.CourseID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]messageDTO, len(s.Messages)),
		Progress:  progressDTO(s.Progress),
	}
	for i, m := range s.Messages {
		dto, err := marshalMessage(m)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	for _, q := range s.Questions {
		env.Questions = append(env.Questions, questionDTO{Question: q.Text, Options: q.Options, Correct: q.Correct})
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSnapshot deserializes a Snapshot from v1 envelope format.
func UnmarshalSnapshot(data []byte) (coursechat.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return coursechat.Snapshot{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != currentVersion {
		return coursechat.Snapshot{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]coursechat.Message, len(env.Messages))
	for i, dto := range env.Messages {
		m, err := unmarshalMessage(dto)
		if err != nil {
			return coursechat.Snapshot{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = m
	}
	var qs []coursechat.Question
	for _, q := range env.Questions {
		qs = append(qs, coursechat.Question{Text: q.Question, Options: q.Options, Correct: q.Correct})
	}
	return coursechat.Snapshot{
		ID:        env.ID,
		CourseID:  env.CourseID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  msgs,
		Progress:  coursechat.Progress(env.Progress),
		Questions: qs,
	}, nil
}

// Save writes a Snapshot to a JSON file, creating parent directories as needed.
func Save(path string, s coursechat.Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Snapshot from a JSON file.
func Load(path string) (coursechat.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coursechat.Snapshot{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSnapshot(data)
}
