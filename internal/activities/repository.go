package activities

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/JaimeStill/study-lab/pkg/query"
	"github.com/JaimeStill/study-lab/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an activity repository.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "activities"),
		pagination: pagination,
	}
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Activity, error) {
	if cmd.UserID == "" || cmd.ActivityType == "" {
		return nil, fmt.Errorf("%w: user_id and activity_type required", ErrInvalidInput)
	}

	data := cmd.Data
	if data == nil {
		data = map[string]any{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode data: %v", ErrInvalidInput, err)
	}

	q := `INSERT INTO activities(id, user_id, activity_type, data)
		VALUES($1, $2, $3, $4)
		RETURNING id, user_id, activity_type, data, created_at`

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Activity, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			uuid.New(), cmd.UserID, cmd.ActivityType, payload,
		}, scanActivity)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("activity recorded", "id", a.ID, "type", a.ActivityType, "user_id", a.UserID)
	return &a, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Activity], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
