package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campnest/backend/internal/domain"
)

// SyncRunRepository is the Postgres implementation of
// domain.SyncRunRepository.
type SyncRunRepository struct {
	pool *pgxpool.Pool
}

// NewSyncRunRepository creates the repository.
func NewSyncRunRepository(pool *pgxpool.Pool) *SyncRunRepository {
	return &SyncRunRepository{pool: pool}
}

const syncRunColumns = `id, type, status, total, processed, successful, failed,
	candidates_created, error, started_at, completed_at, created_at`

func scanSyncRun(row pgx.Row) (*domain.SyncRun, error) {
	var r domain.SyncRun
	err := row.Scan(
		&r.ID, &r.Type, &r.Status, &r.Total, &r.Processed, &r.Successful, &r.Failed,
		&r.CandidatesCreated, &r.Error, &r.StartedAt, &r.CompletedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a run record.
func (r *SyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sync_runs (id, type, status, total)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		run.ID, run.Type, run.Status, run.Total,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sync run %s: %w", run.ID, err)
	}
	return nil
}

// Update rewrites the run's progress fields.
func (r *SyncRunRepository) Update(ctx context.Context, run *domain.SyncRun) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sync_runs SET
			status = $2, processed = $3, successful = $4, failed = $5,
			candidates_created = $6, error = $7, started_at = $8, completed_at = $9
		 WHERE id = $1`,
		run.ID, run.Status, run.Processed, run.Successful, run.Failed,
		run.CandidatesCreated, run.Error, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update sync run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSyncNotRunning
	}
	return nil
}

// GetByID returns one run or domain.ErrSyncNotRunning.
func (r *SyncRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM sync_runs WHERE id = $1`, syncRunColumns)
	run, err := scanSyncRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSyncNotRunning
		}
		return nil, fmt.Errorf("query sync run %s: %w", id, err)
	}
	return run, nil
}

// List returns run history, newest first, plus the unpaginated total.
func (r *SyncRunRepository) List(ctx context.Context, f domain.SyncRunFilter) ([]domain.SyncRun, int, error) {
	where := "WHERE TRUE"
	args := []interface{}{}
	if f.Status != nil {
		where += " AND status = $1"
		args = append(args, *f.Status)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM sync_runs %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sync runs: %w", err)
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM sync_runs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		syncRunColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var out []domain.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *run)
	}
	return out, total, rows.Err()
}
