// Package notes persists ingested study notes and the original files they were built from.
// Note records live in Postgres; source file bytes live in blob storage.
package notes

import (
	"time"

	"github.com/google/uuid"
)

// Note is a stored study note. Content is the sanitized, moderation-approved aggregate.
type Note struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Content     string    `json:"content"`
	Summary     *string   `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Sources     []Source  `json:"sources,omitempty"`
}

// Source is one file submitted with a note and the outcome of extracting its text.
type Source struct {
	ID          uuid.UUID `json:"id"`
	NoteID      uuid.UUID `json:"note_id"`
	Position    int       `json:"position"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count,omitempty"`
	Outcome     string    `json:"outcome"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// SourceFile carries the original bytes of a submitted file into Create.
type SourceFile struct {
	Filename    string
	ContentType string
	PageCount   *int
	Outcome     string
	Data        []byte
}

// CreateCommand contains the data required to create a note.
type CreateCommand struct {
	UserID      string
	Title       string
	Description *string
	Content     string
	Sources     []SourceFile
}

// UpdateCommand changes a note's title or description. Nil fields are left unchanged.
type UpdateCommand struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
