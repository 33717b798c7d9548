package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

// Similarity thresholds and weights. The name signal considers anything at or
// above considerThreshold; a merged score above duplicateThreshold makes the
// verdict "duplicate".
const (
	considerThreshold  = 0.6
	duplicateThreshold = 0.8

	nameWeight    = 0.4
	addressWeight = 0.3

	proximityRadiusKM  = 0.5
	proximityBaseScore = 0.6
	proximityNameBoost = 0.2

	nearDistanceBonus  = 0.3  // within 0.1 km
	closeDistanceBonus = 0.15 // within 0.5 km

	maxSimilarResults = 5

	listingRefsCacheKey = "dedup:listing_refs"
)

// DedupInput is the identity tuple of the place being checked.
type DedupInput struct {
	Name      string
	Address   string
	Phone     string
	Website   string
	Latitude  *float64
	Longitude *float64
}

// DedupResult is the engine's output: the ranked comparison list plus the
// overall verdict. The list is always populated for human review, duplicate
// or not.
type DedupResult struct {
	Similar     []domain.SimilarityResult
	IsDuplicate bool
	DuplicateOf *int64
}

// DedupConfig holds configuration for the deduplication engine.
type DedupConfig struct {
	// ListingCacheTTL bounds how long the catalog comparison set may be
	// served from cache between refreshes.
	ListingCacheTTL time.Duration
}

// DedupService compares a candidate place against the existing catalog via
// four independent signals (name, proximity, phone, website) and merges them
// by taking the maximum score per listing, so a strong single signal is not
// diluted by weak ones.
type DedupService struct {
	listings domain.ListingRepository
	cache    domain.CacheRepository
	ttl      time.Duration
	logger   *zap.Logger
}

// NewDedupService creates a deduplication engine over the given catalog.
func NewDedupService(listings domain.ListingRepository, cache domain.CacheRepository, cfg DedupConfig, logger *zap.Logger) *DedupService {
	ttl := cfg.ListingCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DedupService{
		listings: listings,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// FindSimilar returns catalog entries the input may duplicate, ranked by
// score descending and capped at five, plus the duplicate verdict.
func (s *DedupService) FindSimilar(ctx context.Context, in DedupInput) (*DedupResult, error) {
	refs, err := s.listingRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for comparison: %w", err)
	}

	scores := make(map[int64]float64)
	nameMatched := make(map[int64]bool)
	distances := make(map[int64]float64)
	byID := make(map[int64]*domain.ListingRef, len(refs))

	merge := func(id int64, score float64) {
		if score > 1.0 {
			score = 1.0
		}
		if score > scores[id] {
			scores[id] = score
		}
	}

	for i := range refs {
		ref := &refs[i]
		byID[ref.ID] = ref

		dist := -1.0
		if in.Latitude != nil && in.Longitude != nil && ref.Latitude != nil && ref.Longitude != nil {
			dist = HaversineKM(*in.Latitude, *in.Longitude, *ref.Latitude, *ref.Longitude)
		}
		distances[ref.ID] = dist

		// Signal 1: name similarity, scored via the weighted composite.
		nameSim := StringSimilarity(in.Name, ref.Name)
		if nameSim >= considerThreshold {
			nameMatched[ref.ID] = true
			addrSim := StringSimilarity(in.Address, ref.Address)
			merge(ref.ID, nameWeight*nameSim+addressWeight*addrSim+distanceBonus(dist))
		}

		// Signal 3: a phone match is a near-certain identity signal.
		if in.Phone != "" && ref.Phone != "" && phonesMatch(in.Phone, ref.Phone) {
			merge(ref.ID, 1.0)
		}

		// Signal 4: same for a website match.
		if in.Website != "" && ref.Website != "" && websitesMatch(in.Website, ref.Website) {
			merge(ref.ID, 1.0)
		}
	}

	// Signal 2: location proximity. Runs after the name pass because the
	// boost depends on whether the same listing already matched by name.
	for id, dist := range distances {
		if dist < 0 || dist >= proximityRadiusKM {
			continue
		}
		score := proximityBaseScore
		if nameMatched[id] {
			score += proximityNameBoost
		}
		merge(id, score)
	}

	result := &DedupResult{}
	for id, score := range scores {
		ref := byID[id]
		result.Similar = append(result.Similar, domain.SimilarityResult{
			ListingID:  id,
			Name:       ref.Name,
			Address:    ref.Address,
			Score:      score,
			DistanceKM: distances[id],
		})
	}

	sort.Slice(result.Similar, func(i, j int) bool {
		return result.Similar[i].Score > result.Similar[j].Score
	})
	if len(result.Similar) > maxSimilarResults {
		result.Similar = result.Similar[:maxSimilarResults]
	}

	if len(result.Similar) > 0 && result.Similar[0].Score > duplicateThreshold {
		top := result.Similar[0]
		result.IsDuplicate = true
		result.DuplicateOf = &top.ListingID
		s.logger.Debug("duplicate verdict",
			zap.String("name", in.Name),
			zap.Int64("duplicate_of", top.ListingID),
			zap.Float64("score", top.Score),
		)
	}

	return result, nil
}

// distanceBonus rewards physical closeness in the composite score.
func distanceBonus(distKM float64) float64 {
	switch {
	case distKM < 0:
		return 0
	case distKM < 0.1:
		return nearDistanceBonus
	case distKM < proximityRadiusKM:
		return closeDistanceBonus
	default:
		return 0
	}
}

// listingRefs returns the catalog comparison set, cached so a batch run does
// not refetch the catalog for every item.
func (s *DedupService) listingRefs(ctx context.Context) ([]domain.ListingRef, error) {
	if cached, err := s.cache.Get(ctx, listingRefsCacheKey); err == nil {
		if refs, ok := cached.([]domain.ListingRef); ok {
			return refs, nil
		}
	}

	refs, err := s.listings.ActiveRefs(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, listingRefsCacheKey, refs, s.ttl); err != nil {
		s.logger.Debug("listing refs cache set failed", zap.Error(err))
	}
	return refs, nil
}

// InvalidateCatalogCache drops the cached comparison set. Called after an
// approval creates a new listing so the next dedup pass can see it.
func (s *DedupService) InvalidateCatalogCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, listingRefsCacheKey); err != nil {
		s.logger.Debug("listing refs cache invalidation failed", zap.Error(err))
	}
}
