package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/sanitizer"
	"github.com/google/uuid"
)

//go:embed seeds/*.json
var seedFiles embed.FS

// seedNamespace derives stable note IDs so reseeding updates rather than duplicates.
var seedNamespace = uuid.MustParse("5d0c2f0e-8a4b-4f59-9a53-2f0b7a6f1c11")

func init() {
	registerSeeder(&NoteSeeder{})
}

// NoteSeed is one sample note in a seed file.
type NoteSeed struct {
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Content     string  `json:"content"`
}

// NoteSeedData represents the JSON structure for note seed files.
type NoteSeedData struct {
	Notes []NoteSeed `json:"notes"`
}

// NoteSeeder inserts sample text notes and their activity records.
// It loads seed data from an embedded file or an external file path.
type NoteSeeder struct {
	file string
}

func (s *NoteSeeder) Name() string {
	return "notes"
}

func (s *NoteSeeder) Description() string {
	return "Seeds sample text notes and their note_text activities"
}

// SetFile configures an external seed file path, overriding the embedded default.
func (s *NoteSeeder) SetFile(path string) {
	s.file = path
}

func (s *NoteSeeder) Requires() []string {
	return nil
}

// Seed saves each note with insert-or-update semantics for idempotent execution.
func (s *NoteSeeder) Seed(ctx context.Context, tx *sql.Tx) (int, error) {
	data, err := s.loadSeedData()
	if err != nil {
		return 0, err
	}

	for _, n := range data.Notes {
		id := noteID(n.UserID, n.Title)
		if err := s.saveNote(ctx, tx, id, n); err != nil {
			return 0, fmt.Errorf("save note %s/%s: %w", n.UserID, n.Title, err)
		}
		if err := s.saveActivity(ctx, tx, id, n); err != nil {
			return 0, fmt.Errorf("save activity for %s: %w", n.Title, err)
		}
	}

	return len(data.Notes), nil
}

func (s *NoteSeeder) loadSeedData() (*NoteSeedData, error) {
	var content []byte
	var err error

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/sample_notes.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data NoteSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	for i, n := range data.Notes {
		if n.UserID == "" || n.Title == "" || n.Content == "" {
			return nil, fmt.Errorf("note %d: user_id, title, and content are required", i)
		}
	}

	return &data, nil
}

// noteID is shared with the quiz seeder, which finds its note by owner and title.
func noteID(userID, title string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(userID+"\x00"+title))
}

func (s *NoteSeeder) saveNote(ctx context.Context, tx *sql.Tx, id uuid.UUID, n NoteSeed) error {
	const query = `
		INSERT INTO notes (id, user_id, title, description, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			updated_at = NOW()`

	_, err := tx.ExecContext(ctx, query, id, n.UserID, n.Title, n.Description, sanitizer.Sanitize(n.Content))
	return err
}

func (s *NoteSeeder) saveActivity(ctx context.Context, tx *sql.Tx, id uuid.UUID, n NoteSeed) error {
	const query = `
		INSERT INTO activities (id, user_id, activity_type, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	payload, err := json.Marshal(map[string]any{
		"note_id": id.String(),
		"title":   n.Title,
		"seeded":  true,
	})
	if err != nil {
		return err
	}

	activityID := uuid.NewSHA1(seedNamespace, []byte("activity\x00"+id.String()))
	_, err = tx.ExecContext(ctx, query, activityID, n.UserID, activities.TypeNoteText, payload)
	return err
}
