package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
)

const runColumns = "id, batch_id, operation, program, args, output, status, exit_code, message, started_at, finished_at"

func (s *Store) SaveRun(ctx context.Context, r *domain.Run) error {
	args, err := json.Marshal(r.Args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BatchID, r.Operation, string(r.Program), string(args), r.Output,
		string(r.Status), r.ExitCode, r.Message, toMillis(r.StartedAt), nullMillis(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the terminal fields of a run saved earlier.
func (s *Store) FinishRun(ctx context.Context, r *domain.Run) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, exit_code = ?, message = ?, finished_at = ? WHERE id = ?`,
		string(r.Status), r.ExitCode, r.Message, nullMillis(r.FinishedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return collectRuns(rows)
}

// ListBatchRuns returns a batch's runs in execution order.
func (s *Store) ListBatchRuns(ctx context.Context, batchID string) ([]*domain.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE batch_id = ? ORDER BY started_at, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch runs: %w", err)
	}
	return collectRuns(rows)
}

// PruneRuns keeps the newest keep runs and deletes the rest.
func (s *Store) PruneRuns(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?)`, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) FailStaleRuns(ctx context.Context, message string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, exit_code = -1, message = ?, finished_at = ? WHERE status IN (?, ?)`,
		string(domain.RunStatusFailed), message, toMillis(time.Now()),
		string(domain.RunStatusRunning), string(domain.RunStatusCancelling),
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var (
		r        domain.Run
		program  string
		status   string
		args     string
		started  int64
		finished sql.NullInt64
	)
	if err := sc.Scan(&r.ID, &r.BatchID, &r.Operation, &program, &args, &r.Output,
		&status, &r.ExitCode, &r.Message, &started, &finished); err != nil {
		return nil, err
	}
	if err := json.NewDecoder(strings.NewReader(args)).Decode(&r.Args); err != nil {
		return nil, fmt.Errorf("decode args of run %s: %w", r.ID, err)
	}
	r.Program = domain.Program(program)
	r.Status = domain.RunStatus(status)
	r.StartedAt = fromMillis(started)
	if finished.Valid {
		t := fromMillis(finished.Int64)
		r.FinishedAt = &t
	}
	return &r, nil
}

func collectRuns(rows *sql.Rows) ([]*domain.Run, error) {
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ port.RunStore = (*Store)(nil)
