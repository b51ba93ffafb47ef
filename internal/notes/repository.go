package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
	"github.com/JaimeStill/study-lab/pkg/storage"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a note repository with database and blob storage integration.
func New(db *sql.DB, storage storage.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		storage:    storage,
		logger:     logger.With("system", "notes"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Note], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanNote)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Note, error) {
	q, args := query.
		NewBuilder(projection).
		BuildSingle("Id", id)

	n, err := repository.QueryOne(ctx, r.db, q, args, scanNote)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	sources, err := r.sources(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	n.Sources = sources

	return &n, nil
}

// Create stores source blobs, then inserts the note and its sources in one transaction.
// Blobs already written are removed when any step fails.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Note, error) {
	noteID := uuid.New()

	type pending struct {
		id  uuid.UUID
		key string
		src SourceFile
	}

	staged := make([]pending, 0, len(cmd.Sources))
	cleanup := func() {
		// The request may already be cancelled; the blobs must go regardless.
		cleanupCtx := context.WithoutCancel(ctx)
		for _, p := range staged {
			if err := r.storage.Delete(cleanupCtx, p.key); err != nil {
				r.logger.Error("cleanup failed after create error", "storage_key", p.key, "error", err)
			}
		}
	}

	for _, src := range cmd.Sources {
		id := uuid.New()
		key := buildStorageKey(noteID, id, src.Filename)

		if err := r.storage.Store(ctx, key, src.Data); err != nil {
			cleanup()
			return nil, fmt.Errorf("store source %s: %w", src.Filename, err)
		}
		staged = append(staged, pending{id: id, key: key, src: src})
	}

	noteQ := `INSERT INTO notes(id, user_id, title, description, content)
		VALUES($1, $2, $3, $4, $5)
		RETURNING ` + noteColumns

	sourceQ := `INSERT INTO note_sources(id, note_id, position, filename, content_type, size_bytes, page_count, outcome, storage_key)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + sourceColumns

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Note, error) {
		n, err := repository.QueryOne(ctx, tx, noteQ, []any{
			noteID, cmd.UserID, cmd.Title, cmd.Description, cmd.Content,
		}, scanNote)
		if err != nil {
			return n, err
		}

		for i, p := range staged {
			src, err := repository.QueryOne(ctx, tx, sourceQ, []any{
				p.id, noteID, i, p.src.Filename, p.src.ContentType, int64(len(p.src.Data)), p.src.PageCount, p.src.Outcome, p.key,
			}, scanSource)
			if err != nil {
				return n, fmt.Errorf("insert source %s: %w", p.src.Filename, err)
			}
			n.Sources = append(n.Sources, src)
		}

		return n, nil
	})

	if err != nil {
		cleanup()
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("note created", "id", n.ID, "user_id", n.UserID, "sources", len(n.Sources))
	return &n, nil
}

func (r *repo) SetSummary(ctx context.Context, id uuid.UUID, summary string) error {
	q := `UPDATE notes SET summary = $1, updated_at = NOW() WHERE id = $2`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, summary, id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Note, error) {
	if cmd.Title == nil && cmd.Description == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidUpdate)
	}
	if cmd.Title != nil && strings.TrimSpace(*cmd.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidUpdate)
	}

	q := `UPDATE notes SET title = COALESCE($1, title), description = COALESCE($2, description), updated_at = NOW()
		WHERE id = $3
		RETURNING ` + noteColumns

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Note, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Title, cmd.Description, id}, scanNote)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("note updated", "id", n.ID)
	return &n, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	q := `DELETE FROM notes WHERE id = $1`
	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	cleanupCtx := context.WithoutCancel(ctx)
	for _, src := range n.Sources {
		if err := r.storage.Delete(cleanupCtx, src.StorageKey); err != nil {
			r.logger.Error("storage cleanup failed", "storage_key", src.StorageKey, "error", err)
		}
	}

	r.logger.Info("note deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, noteID, sourceID uuid.UUID) (*Source, []byte, error) {
	q := `SELECT ` + sourceColumns + ` FROM note_sources WHERE note_id = $1 AND id = $2`

	src, err := repository.QueryOne(ctx, r.db, q, []any{noteID, sourceID}, scanSource)
	if err != nil {
		return nil, nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	data, err := r.storage.Retrieve(ctx, src.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: source blob missing", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("retrieve source: %w", err)
	}

	return &src, data, nil
}

func (r *repo) sources(ctx context.Context, q repository.Querier, noteID uuid.UUID) ([]Source, error) {
	stmt := `SELECT ` + sourceColumns + ` FROM note_sources WHERE note_id = $1 ORDER BY position`

	sources, err := repository.QueryMany(ctx, q, stmt, []any{noteID}, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	return sources, nil
}

func buildStorageKey(noteID, sourceID uuid.UUID, filename string) string {
	return fmt.Sprintf("notes/%s/%s/%s", noteID.String(), sourceID.String(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
