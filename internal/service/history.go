package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
)

const storeTimeout = 5 * time.Second

// History records every job it starts in a RunStore. A nil store keeps
// IDs and events flowing without persisting anything.
type History struct {
	store port.RunStore
	now   func() time.Time
}

func NewHistory(store port.RunStore) *History {
	return &History{store: store, now: time.Now}
}

// RunMeta describes a run before it starts. An empty ID is generated.
type RunMeta struct {
	ID        string
	Operation string
	BatchID   string
}

// StartFunc hands the recording observer to a runner.
type StartFunc func(obs port.Observer) error

// Start allocates a run ID, calls start with an observer that records the
// outcome and forwards everything to obs, and saves the run once start has
// succeeded. Nothing is stored when start fails.
func (h *History) Start(ctx context.Context, meta RunMeta, job domain.Job, start StartFunc, obs port.Observer) (string, error) {
	id := meta.ID
	if id == "" {
		var err error
		if id, err = NewID(); err != nil {
			return "", err
		}
	}
	run := &domain.Run{
		ID:        id,
		BatchID:   meta.BatchID,
		Operation: meta.Operation,
		Program:   job.Program,
		Args:      append([]string(nil), job.Args...),
		Output:    job.Output,
		Status:    domain.RunStatusRunning,
		StartedAt: h.now().UTC(),
	}
	if obs == nil {
		obs = port.ObserverFuncs{}
	}
	rec := &recorder{history: h, run: run, next: obs}

	// Done waits on this lock, so the run row exists before it is finished.
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if err := start(rec); err != nil {
		return "", err
	}
	if h.store != nil {
		if err := h.store.SaveRun(ctx, run); err != nil {
			logger.Error.Printf("history: failed to save run %s: %v", id, err)
			rec.unsaved = true
		}
	}
	return id, nil
}

// Recover marks runs that a previous process left running as failed.
func (h *History) Recover(ctx context.Context) {
	if h.store == nil {
		return
	}
	n, err := h.store.FailStaleRuns(ctx, "Interrupted")
	if err != nil {
		logger.Error.Printf("history: failed to close stale runs: %v", err)
		return
	}
	if n > 0 {
		logger.Warn.Printf("history: marked %d interrupted run(s) as failed", n)
	}
}

func (h *History) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	if h.store == nil {
		return nil, nil
	}
	return h.store.ListRuns(ctx, limit)
}

func (h *History) Get(ctx context.Context, id string) (*domain.Run, error) {
	if h.store == nil {
		return nil, domain.ErrNotFound
	}
	return h.store.GetRun(ctx, id)
}

func (h *History) Batch(ctx context.Context, batchID string) ([]*domain.Run, error) {
	if h.store == nil {
		return nil, nil
	}
	return h.store.ListBatchRuns(ctx, batchID)
}

func (h *History) Prune(ctx context.Context, keep int) (int64, error) {
	if h.store == nil {
		return 0, nil
	}
	return h.store.PruneRuns(ctx, keep)
}

// NewID returns a time-ordered identifier for runs and batches.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

type recorder struct {
	mu      sync.Mutex
	history *History
	run     *domain.Run
	unsaved bool
	next    port.Observer
}

func (r *recorder) Progress(percent float64) {
	r.next.Progress(percent)
}

func (r *recorder) Log(line string) {
	r.next.Log(line)
}

func (r *recorder) Done(res domain.Result) {
	r.mu.Lock()
	r.run.Finish(res, r.history.now().UTC())
	if r.history.store != nil && !r.unsaved {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err := r.history.store.FinishRun(ctx, r.run); err != nil {
			logger.Error.Printf("history: failed to finish run %s: %v", r.run.ID, err)
		}
		cancel()
	}
	r.mu.Unlock()

	r.next.Done(res)
}
