// Package activities records user-facing events such as note uploads and quiz generation.
package activities

import (
	"time"

	"github.com/google/uuid"
)

// Activity types recorded by the service.
const (
	TypeNoteUpload    = "note_upload"
	TypeNoteText      = "note_text"
	TypeQuizGenerated = "quiz_generated"
)

// Activity is a recorded event with an open-ended payload.
type Activity struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"user_id"`
	ActivityType string         `json:"activity_type"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RecordCommand contains the data required to record an activity.
type RecordCommand struct {
	UserID       string
	ActivityType string
	Data         map[string]any
}
