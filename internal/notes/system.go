package notes

import (
	"context"

	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/google/uuid"
)

// System defines note persistence operations.
// Implementations keep note records and source blobs consistent.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Note], error)
	Find(ctx context.Context, id uuid.UUID) (*Note, error)
	Create(ctx context.Context, cmd CreateCommand) (*Note, error)
	SetSummary(ctx context.Context, id uuid.UUID, summary string) error
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Note, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Download(ctx context.Context, noteID, sourceID uuid.UUID) (*Source, []byte, error)
}
