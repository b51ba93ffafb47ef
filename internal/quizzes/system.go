package quizzes

import (
	"context"

	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/google/uuid"
)

// System defines quiz generation and storage operations.
type System interface {
	Generate(ctx context.Context, cmd GenerateCommand) (*Quiz, error)
	Find(ctx context.Context, id uuid.UUID) (*Quiz, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Quiz], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
