package notes

import (
	"net/url"

	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
)

var projection = query.NewProjectionMap("public", "notes", "n").
	Project("id", "Id").
	Project("user_id", "UserId").
	Project("title", "Title").
	Project("description", "Description").
	Project("content", "Content").
	Project("summary", "Summary").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

const noteColumns = "id, user_id, title, description, content, summary, created_at, updated_at"

const sourceColumns = "id, note_id, position, filename, content_type, size_bytes, page_count, outcome, storage_key, created_at"

func scanNote(s repository.Scanner) (Note, error) {
	var n Note
	err := s.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Description,
		&n.Content,
		&n.Summary,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}

func scanSource(s repository.Scanner) (Source, error) {
	var src Source
	err := s.Scan(
		&src.ID,
		&src.NoteID,
		&src.Position,
		&src.Filename,
		&src.ContentType,
		&src.SizeBytes,
		&src.PageCount,
		&src.Outcome,
		&src.StorageKey,
		&src.CreatedAt,
	)
	return src, err
}

// Filters contains optional criteria for filtering note queries.
type Filters struct {
	UserID *string
	Title  *string
}

// FiltersFromQuery extracts note filters from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.UserID != nil {
		b.WhereEquals("UserId", *f.UserID)
	}
	return b.WhereContains("Title", f.Title)
}
