package coursechat

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the state of a course chat kept between runs.
type Snapshot struct {
	ID        string
	CourseID  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
	Progress  Progress
	Questions []Question
}

// NewSnapshot returns an empty snapshot for courseID with a fresh ID.
func NewSnapshot(courseID string, now time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
