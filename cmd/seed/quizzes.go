package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/study-lab/internal/quizzes"
	"github.com/google/uuid"
)

func init() {
	registerSeeder(&QuizSeeder{})
}

// QuizSeed is a sample quiz over a seeded note, identified by the note's owner and title.
type QuizSeed struct {
	UserID    string             `json:"user_id"`
	NoteTitle string             `json:"note_title"`
	Questions []quizzes.Question `json:"questions"`
}

type quizSeedData struct {
	Quizzes []QuizSeed `json:"quizzes"`
}

// QuizSeeder inserts sample quizzes for the sample notes.
type QuizSeeder struct{}

func (s *QuizSeeder) Name() string {
	return "quizzes"
}

func (s *QuizSeeder) Description() string {
	return "Seeds sample quizzes over the sample notes"
}

func (s *QuizSeeder) Requires() []string {
	return []string{"notes"}
}

func (s *QuizSeeder) Seed(ctx context.Context, tx *sql.Tx) (int, error) {
	data, err := loadQuizSeeds()
	if err != nil {
		return 0, err
	}

	const query = `
		INSERT INTO quizzes (id, note_id, user_id, title, questions)
		SELECT $1, n.id, $3, 'Quiz: ' || n.title, $4
		FROM notes n WHERE n.id = $2 AND n.user_id = $3
		ON CONFLICT (id) DO UPDATE SET questions = EXCLUDED.questions`

	for _, q := range data.Quizzes {
		nid := noteID(q.UserID, q.NoteTitle)

		payload, err := json.Marshal(q.Questions)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, query, quizID(nid), nid, q.UserID, payload)
		if err != nil {
			return 0, fmt.Errorf("save quiz for %s: %w", q.NoteTitle, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return 0, fmt.Errorf("save quiz for %s: note not seeded", q.NoteTitle)
		}
	}

	return len(data.Quizzes), nil
}

func quizID(noteID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte("quiz\x00"+noteID.String()))
}

// loadQuizSeeds reads the embedded quizzes and validates them the same way a
// generated quiz is validated.
func loadQuizSeeds() (*quizSeedData, error) {
	content, err := seedFiles.ReadFile("seeds/sample_quizzes.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded seed file: %w", err)
	}

	var data quizSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	for i := range data.Quizzes {
		q := &data.Quizzes[i]
		if q.UserID == "" || q.NoteTitle == "" {
			return nil, fmt.Errorf("quiz %d: user_id and note_title are required", i)
		}

		raw, err := json.Marshal(map[string]any{"questions": q.Questions})
		if err != nil {
			return nil, err
		}
		questions, err := quizzes.ParseQuestions(string(raw))
		if err != nil {
			return nil, fmt.Errorf("quiz %d: %w", i, err)
		}
		q.Questions = questions
	}

	return &data, nil
}
