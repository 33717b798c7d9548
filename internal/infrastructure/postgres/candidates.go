package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campnest/backend/internal/domain"
)

// CandidateRepository is the Postgres implementation of
// domain.CandidateRepository.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates the repository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

const candidateColumns = `id, raw_place_id, confidence, is_duplicate, duplicate_of,
	suggested_province_id, suggested_type_id, warnings, merged_data, status,
	reviewer_id, reviewed_at, reject_reason, review_notes,
	imported_listing_id, imported_at, created_at, updated_at`

func scanCandidate(row pgx.Row) (*domain.ImportCandidate, error) {
	var c domain.ImportCandidate
	err := row.Scan(
		&c.ID, &c.RawPlaceID, &c.Confidence, &c.IsDuplicate, &c.DuplicateOf,
		&c.SuggestedProvinceID, &c.SuggestedTypeID, &c.Warnings, &c.MergedData, &c.Status,
		&c.ReviewerID, &c.ReviewedAt, &c.RejectReason, &c.ReviewNotes,
		&c.ImportedListingID, &c.ImportedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID returns one candidate or domain.ErrCandidateNotFound.
func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*domain.ImportCandidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM import_candidates WHERE id = $1`, candidateColumns)
	c, err := scanCandidate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("query candidate %d: %w", id, err)
	}
	return c, nil
}

// GetByRawPlaceID returns the candidate for a raw place or
// domain.ErrCandidateNotFound. raw_place_id is unique.
func (r *CandidateRepository) GetByRawPlaceID(ctx context.Context, rawPlaceID int64) (*domain.ImportCandidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM import_candidates WHERE raw_place_id = $1`, candidateColumns)
	c, err := scanCandidate(r.pool.QueryRow(ctx, query, rawPlaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("query candidate by raw place %d: %w", rawPlaceID, err)
	}
	return c, nil
}

// Create inserts a candidate and fills in its id and timestamps.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.ImportCandidate) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO import_candidates
			(raw_place_id, confidence, is_duplicate, duplicate_of,
			 suggested_province_id, suggested_type_id, warnings, merged_data,
			 status, reject_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		c.RawPlaceID, c.Confidence, c.IsDuplicate, c.DuplicateOf,
		c.SuggestedProvinceID, c.SuggestedTypeID, c.Warnings, c.MergedData,
		c.Status, c.RejectReason,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert candidate for raw place %d: %w", c.RawPlaceID, err)
	}
	return nil
}

// Update rewrites the pipeline-owned fields of an existing candidate.
func (r *CandidateRepository) Update(ctx context.Context, c *domain.ImportCandidate) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE import_candidates SET
			confidence = $2, is_duplicate = $3, duplicate_of = $4,
			suggested_province_id = $5, suggested_type_id = $6, warnings = $7,
			merged_data = $8, status = $9, reject_reason = $10, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		c.ID, c.Confidence, c.IsDuplicate, c.DuplicateOf,
		c.SuggestedProvinceID, c.SuggestedTypeID, c.Warnings,
		c.MergedData, c.Status, c.RejectReason,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCandidateNotFound
		}
		return fmt.Errorf("update candidate %d: %w", c.ID, err)
	}
	return nil
}

// List returns candidates matching the filter, newest first, plus the
// unpaginated total.
func (r *CandidateRepository) List(ctx context.Context, f domain.CandidateFilter) ([]domain.ImportCandidate, int, error) {
	where := "WHERE TRUE"
	args := []interface{}{}
	n := 0

	addArg := func(clause string, value interface{}) {
		n++
		where += fmt.Sprintf(" AND %s $%d", clause, n)
		args = append(args, value)
	}

	if f.Status != nil {
		addArg("status =", *f.Status)
	}
	if f.MinConfidence != nil {
		addArg("confidence >=", *f.MinConfidence)
	}
	if f.IsDuplicate != nil {
		addArg("is_duplicate =", *f.IsDuplicate)
	}
	if f.ProvinceID != nil {
		addArg("suggested_province_id =", *f.ProvinceID)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM import_candidates %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM import_candidates %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		candidateColumns, where, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.ImportCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// MarkApproved transitions pending -> approved, reporting whether this call
// won the transition. The status predicate makes concurrent approvals race
// safely: only one caller sees RowsAffected() == 1.
func (r *CandidateRepository) MarkApproved(ctx context.Context, id int64, reviewerID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE import_candidates
		 SET status = $2, reviewer_id = $3, reviewed_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		id, domain.CandidateStatusApproved, reviewerID, domain.CandidateStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("approve candidate %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkRejected transitions pending -> rejected with the reviewer's reason.
func (r *CandidateRepository) MarkRejected(ctx context.Context, id int64, reviewerID, reason, notes string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE import_candidates
		 SET status = $2, reviewer_id = $3, reviewed_at = NOW(),
		     reject_reason = $4, review_notes = $5, updated_at = NOW()
		 WHERE id = $1 AND status = $6`,
		id, domain.CandidateStatusRejected, reviewerID, reason, notes, domain.CandidateStatusPending,
	)
	if err != nil {
		return fmt.Errorf("reject candidate %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidCandidateState
	}
	return nil
}

// MarkImported records the materialized listing on an approved candidate.
func (r *CandidateRepository) MarkImported(ctx context.Context, id int64, listingID int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE import_candidates
		 SET status = $2, imported_listing_id = $3, imported_at = $4, updated_at = NOW()
		 WHERE id = $1 AND status = $5`,
		id, domain.CandidateStatusImported, listingID, at, domain.CandidateStatusApproved,
	)
	if err != nil {
		return fmt.Errorf("mark candidate %d imported: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidCandidateState
	}
	return nil
}
