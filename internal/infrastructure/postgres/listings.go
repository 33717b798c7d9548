package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campnest/backend/internal/domain"
)

// ListingRepository is the Postgres implementation of
// domain.ListingRepository. It exposes only the narrow surface the import
// core needs; the rest of the catalog belongs to the surrounding platform.
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates the repository.
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// Create inserts a listing and returns its id.
func (r *ListingRepository) Create(ctx context.Context, l domain.NewListing) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO listings
			(name, address, province_id, type_id, latitude, longitude,
			 phone, website, rating, verified, featured, owner_id, active, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, NOW())
		 RETURNING id`,
		l.Name, l.Address, l.ProvinceID, l.TypeID, l.Latitude, l.Longitude,
		l.Phone, l.Website, l.Rating, l.Verified, l.Featured, l.OwnerID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert listing %q: %w", l.Name, err)
	}
	return id, nil
}

// AttachPhoto attaches one photo to a listing.
func (r *ListingRepository) AttachPhoto(ctx context.Context, p domain.ListingPhoto) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO listing_photos (listing_id, url, position, is_primary)
		 VALUES ($1, $2, $3, $4)`,
		p.ListingID, p.URL, p.Position, p.Primary,
	)
	if err != nil {
		return fmt.Errorf("attach photo to listing %d: %w", p.ListingID, err)
	}
	return nil
}

// ActiveRefs returns the comparison projection of every active listing.
func (r *ListingRepository) ActiveRefs(ctx context.Context) ([]domain.ListingRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(website, ''),
		        latitude, longitude
		 FROM listings WHERE active`,
	)
	if err != nil {
		return nil, fmt.Errorf("query active listings: %w", err)
	}
	defer rows.Close()

	var refs []domain.ListingRef
	for rows.Next() {
		var ref domain.ListingRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Address, &ref.Phone, &ref.Website,
			&ref.Latitude, &ref.Longitude); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
