package port

import (
	"context"

	"github.com/bnema/cheval/internal/domain"
)

type RunStore interface {
	SaveRun(ctx context.Context, run *domain.Run) error
	FinishRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.Run, error)
	ListBatchRuns(ctx context.Context, batchID string) ([]*domain.Run, error)
	PruneRuns(ctx context.Context, keep int) (int64, error)
	// FailStaleRuns closes runs left running by a previous process.
	FailStaleRuns(ctx context.Context, message string) (int64, error)
}
