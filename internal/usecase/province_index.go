package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

// maxCentroidDistanceKM is how far a point may be from the nearest province
// centroid before a coordinate lookup reports no match. Centroid distance is
// a weak proxy, so beyond this an explicit unknown beats a wrong guess.
const maxCentroidDistanceKM = 100.0

// ProvinceIndex resolves a geographic point or a free-text region name to a
// canonical province. Built once at startup with a blocking load and read-only
// afterwards, so no locking is needed around lookups.
type ProvinceIndex struct {
	provinces []domain.Province
	byKey     map[string]int
}

// NewProvinceIndex loads all provinces into memory. A load failure is
// tolerated: the index comes up empty, every lookup returns ErrNoMatch and
// callers fall back to their default province.
func NewProvinceIndex(ctx context.Context, repo domain.ProvinceRepository, logger *zap.Logger) *ProvinceIndex {
	idx := &ProvinceIndex{byKey: make(map[string]int)}

	provinces, err := repo.All(ctx)
	if err != nil {
		logger.Warn("province index load failed, all lookups will report no match", zap.Error(err))
		return idx
	}

	idx.provinces = provinces
	for i, p := range provinces {
		if p.Slug != "" {
			idx.byKey[strings.ToLower(p.Slug)] = i
		}
		if p.NameEN != "" {
			idx.byKey[strings.ToLower(p.NameEN)] = i
		}
		if p.NameLocal != "" {
			idx.byKey[p.NameLocal] = i
		}
	}

	logger.Info("province index loaded", zap.Int("provinces", len(provinces)))
	return idx
}

// Size returns the number of indexed provinces.
func (idx *ProvinceIndex) Size() int {
	return len(idx.provinces)
}

// MatchByCoordinates returns the province whose centroid is nearest to the
// point, or ErrNoMatch when every centroid is farther than 100 km.
func (idx *ProvinceIndex) MatchByCoordinates(lat, lng float64) (*domain.Province, error) {
	var nearest *domain.Province
	nearestDist := maxCentroidDistanceKM

	for i := range idx.provinces {
		p := &idx.provinces[i]
		d := HaversineKM(lat, lng, p.Latitude, p.Longitude)
		if d <= nearestDist {
			nearest = p
			nearestDist = d
		}
	}

	if nearest == nil {
		return nil, domain.ErrNoMatch
	}
	return nearest, nil
}

// MatchByName resolves a free-text region name. Exact case-insensitive lookup
// first, then substring containment in either direction.
func (idx *ProvinceIndex) MatchByName(name string) (*domain.Province, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, domain.ErrNoMatch
	}

	if i, ok := idx.byKey[needle]; ok {
		return &idx.provinces[i], nil
	}

	for i := range idx.provinces {
		p := &idx.provinces[i]
		for _, key := range []string{strings.ToLower(p.NameEN), p.NameLocal, strings.ToLower(p.Slug)} {
			if key == "" {
				continue
			}
			if strings.Contains(key, needle) || strings.Contains(needle, key) {
				return p, nil
			}
		}
	}

	return nil, domain.ErrNoMatch
}
