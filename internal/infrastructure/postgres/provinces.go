package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campnest/backend/internal/domain"
)

// ProvinceRepository is the Postgres implementation of
// domain.ProvinceRepository.
type ProvinceRepository struct {
	pool *pgxpool.Pool
}

// NewProvinceRepository creates the repository.
func NewProvinceRepository(pool *pgxpool.Pool) *ProvinceRepository {
	return &ProvinceRepository{pool: pool}
}

// All returns every province with its centroid.
func (r *ProvinceRepository) All(ctx context.Context) ([]domain.Province, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name_en, COALESCE(name_local, ''), slug, latitude, longitude
		 FROM provinces ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query provinces: %w", err)
	}
	defer rows.Close()

	var provinces []domain.Province
	for rows.Next() {
		var p domain.Province
		if err := rows.Scan(&p.ID, &p.NameEN, &p.NameLocal, &p.Slug, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}
