package quizzes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	notes      notes.System
	completer  summarizer.Completer
	activities activities.System
	cfg        *Config
	logger     *slog.Logger
	pagination pagination.Config
}

// Deps holds the collaborators a quiz System needs.
// Completer may be nil, in which case Generate returns ErrUnavailable.
// Activities may be nil to skip activity logging.
type Deps struct {
	DB         *sql.DB
	Notes      notes.System
	Completer  summarizer.Completer
	Activities activities.System
	Config     *Config
	Logger     *slog.Logger
	Pagination pagination.Config
}

// New creates a quiz repository.
func New(deps Deps) System {
	return &repo{
		db:         deps.DB,
		notes:      deps.Notes,
		completer:  deps.Completer,
		activities: deps.Activities,
		cfg:        deps.Config,
		logger:     deps.Logger.With("system", "quizzes"),
		pagination: deps.Pagination,
	}
}

func (r *repo) Generate(ctx context.Context, cmd GenerateCommand) (*Quiz, error) {
	if err := r.normalize(&cmd); err != nil {
		return nil, err
	}

	if r.completer == nil {
		return nil, ErrUnavailable
	}

	note, err := r.notes.Find(ctx, cmd.NoteID)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("load note: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, r.cfg.TimeoutDuration())
	defer cancel()

	content := summarizer.Truncate(note.Content, r.cfg.InputChars)
	reply, err := r.completer.Complete(genCtx, systemPrompt, buildPrompt(content, cmd.QuestionCount, cmd.QuestionTypes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationError, err)
	}

	questions, err := ParseQuestions(reply)
	if err != nil {
		r.logger.Warn("quiz response rejected", "note_id", cmd.NoteID, "error", err)
		return nil, err
	}
	if len(questions) > cmd.QuestionCount {
		questions = questions[:cmd.QuestionCount]
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	q := `INSERT INTO quizzes(id, note_id, user_id, title, questions)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, note_id, user_id, title, questions, created_at`

	quiz, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Quiz, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			uuid.New(), cmd.NoteID, cmd.UserID, "Quiz: " + note.Title, payload,
		}, scanQuiz)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("quiz generated", "id", quiz.ID, "note_id", quiz.NoteID, "questions", len(quiz.Questions))
	r.recordActivity(ctx, quiz)

	return &quiz, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	q, args := query.
		NewBuilder(projection).
		BuildSingle("Id", id)

	quiz, err := repository.QueryOne(ctx, r.db, q, args, scanQuiz)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &quiz, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Quiz], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanQuiz)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM quizzes WHERE id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("quiz deleted", "id", id)
	return nil
}

func (r *repo) normalize(cmd *GenerateCommand) error {
	if cmd.NoteID == uuid.Nil {
		return fmt.Errorf("%w: note_id required", ErrInvalidRequest)
	}
	if cmd.UserID == "" {
		return fmt.Errorf("%w: user_id required", ErrInvalidRequest)
	}

	if cmd.QuestionCount == 0 {
		cmd.QuestionCount = r.cfg.DefaultQuestions
	}
	if cmd.QuestionCount < 1 || cmd.QuestionCount > r.cfg.MaxQuestions {
		return fmt.Errorf("%w: question_count must be between 1 and %d", ErrInvalidRequest, r.cfg.MaxQuestions)
	}

	if len(cmd.QuestionTypes) == 0 {
		cmd.QuestionTypes = []string{TypeMCQ, TypeLongAnswer}
	}
	for _, t := range cmd.QuestionTypes {
		if !slices.Contains([]string{TypeMCQ, TypeLongAnswer}, t) {
			return fmt.Errorf("%w: unknown question type %q", ErrInvalidRequest, t)
		}
	}

	return nil
}

func (r *repo) recordActivity(ctx context.Context, quiz Quiz) {
	if r.activities == nil {
		return
	}

	_, err := r.activities.Record(ctx, activities.RecordCommand{
		UserID:       quiz.UserID,
		ActivityType: activities.TypeQuizGenerated,
		Data: map[string]any{
			"quiz_id":        quiz.ID.String(),
			"note_id":        quiz.NoteID.String(),
			"question_count": len(quiz.Questions),
		},
	})
	if err != nil {
		r.logger.Warn("activity logging failed", "quiz_id", quiz.ID, "error", err)
	}
}
