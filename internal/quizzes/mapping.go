package quizzes

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
	"github.com/google/uuid"
)

var projection = query.NewProjectionMap("public", "quizzes", "q").
	Project("id", "Id").
	Project("note_id", "NoteId").
	Project("user_id", "UserId").
	Project("title", "Title").
	Project("questions", "Questions").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanQuiz(s repository.Scanner) (Quiz, error) {
	var q Quiz
	var questions []byte
	if err := s.Scan(&q.ID, &q.NoteID, &q.UserID, &q.Title, &questions, &q.CreatedAt); err != nil {
		return q, err
	}

	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return q, fmt.Errorf("decode questions: %w", err)
	}
	return q, nil
}

// Filters contains optional criteria for filtering quiz queries.
type Filters struct {
	NoteID *uuid.UUID
	UserID *string
}

// FiltersFromQuery extracts quiz filters from URL query parameters.
// An unparseable note_id is ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("note_id"); n != "" {
		if id, err := uuid.Parse(n); err == nil {
			f.NoteID = &id
		}
	}

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.NoteID != nil {
		b.WhereEquals("NoteId", *f.NoteID)
	}
	if f.UserID != nil {
		b.WhereEquals("UserId", *f.UserID)
	}
	return b
}
