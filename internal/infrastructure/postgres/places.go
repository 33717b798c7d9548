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

// RawPlaceRepository is the Postgres implementation of
// domain.RawPlaceRepository.
type RawPlaceRepository struct {
	pool *pgxpool.Pool
}

// NewRawPlaceRepository creates the repository.
func NewRawPlaceRepository(pool *pgxpool.Pool) *RawPlaceRepository {
	return &RawPlaceRepository{pool: pool}
}

const rawPlaceColumns = `id, external_id, external_id_hash, payload, fetched_at, status,
	processed_at, imported, imported_at, imported_listing_id`

// GetByID returns one raw place or domain.ErrRawPlaceNotFound.
func (r *RawPlaceRepository) GetByID(ctx context.Context, id int64) (*domain.RawPlace, error) {
	query := fmt.Sprintf(`SELECT %s FROM raw_places WHERE id = $1`, rawPlaceColumns)

	var p domain.RawPlace
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ExternalID, &p.ExternalIDHash, &p.Payload, &p.FetchedAt, &p.Status,
		&p.ProcessedAt, &p.Imported, &p.ImportedAt, &p.ImportedListingID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRawPlaceNotFound
		}
		return nil, fmt.Errorf("query raw place %d: %w", id, err)
	}
	return &p, nil
}

// ListPendingIDs returns ids of pending raw places, oldest fetch first.
func (r *RawPlaceRepository) ListPendingIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM raw_places WHERE status = $1 ORDER BY fetched_at, id LIMIT $2`,
		domain.RawPlaceStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending raw places: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateStatus moves the processing status forward, stamping processed_at on
// the terminal statuses.
func (r *RawPlaceRepository) UpdateStatus(ctx context.Context, id int64, status domain.RawPlaceStatus) error {
	var processedAt *time.Time
	if status == domain.RawPlaceStatusCompleted || status == domain.RawPlaceStatusFailed {
		now := time.Now()
		processedAt = &now
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE raw_places SET status = $2, processed_at = COALESCE($3, processed_at) WHERE id = $1`,
		id, status, processedAt,
	)
	if err != nil {
		return fmt.Errorf("update raw place %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRawPlaceNotFound
	}
	return nil
}

// MarkImported flips the import flags and records the produced listing.
func (r *RawPlaceRepository) MarkImported(ctx context.Context, id int64, listingID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE raw_places SET imported = TRUE, imported_at = NOW(), imported_listing_id = $2 WHERE id = $1`,
		id, listingID,
	)
	if err != nil {
		return fmt.Errorf("mark raw place %d imported: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRawPlaceNotFound
	}
	return nil
}

// DownloadedPhotos returns mirrored photo asset URLs for the raw place.
func (r *RawPlaceRepository) DownloadedPhotos(ctx context.Context, rawPlaceID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT url FROM raw_place_photos WHERE raw_place_id = $1 ORDER BY position`,
		rawPlaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query raw place %d photos: %w", rawPlaceID, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
