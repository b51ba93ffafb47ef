package activities

import (
	"context"

	"github.com/JaimeStill/study-lab/pkg/pagination"
)

// System defines activity log operations.
type System interface {
	Record(ctx context.Context, cmd RecordCommand) (*Activity, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Activity], error)
}
