// Package quizzes generates practice quizzes from stored notes and persists them.
package quizzes

import (
	"time"

	"github.com/google/uuid"
)

// Question types.
const (
	TypeMCQ        = "mcq"
	TypeLongAnswer = "long_answer"
)

// Quiz is a generated set of questions over one note.
type Quiz struct {
	ID        uuid.UUID  `json:"id"`
	NoteID    uuid.UUID  `json:"note_id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
}

// Question is one quiz item. Options is empty for long answer questions.
type Question struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// GenerateCommand requests a quiz over a note.
type GenerateCommand struct {
	NoteID        uuid.UUID `json:"note_id"`
	UserID        string    `json:"user_id"`
	QuestionCount int       `json:"question_count,omitempty"`
	QuestionTypes []string  `json:"question_types,omitempty"`
}
