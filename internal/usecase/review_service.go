package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

// ApproveRequest carries the admin's approval input.
type ApproveRequest struct {
	ReviewerID string
	// Edits are field overrides merged over the candidate's stored data
	// before the listing is created. Keys follow the payload JSON names.
	Edits    map[string]interface{}
	OwnerID  *string
	Featured bool
}

// CandidateDetail is the full comparison view for one candidate: the stored
// candidate, its source record, and a fresh similarity comparison.
type CandidateDetail struct {
	Candidate domain.ImportCandidate    `json:"candidate"`
	RawPlace  *domain.RawPlace          `json:"raw_place"`
	Similar   []domain.SimilarityResult `json:"similar"`
}

// BulkFailure records one failed item of a bulk approve.
type BulkFailure struct {
	CandidateID int64  `json:"candidate_id"`
	Error       string `json:"error"`
}

// BulkApproveResult is the mixed outcome of a bulk approve. Partial success
// is the expected case, not an error condition.
type BulkApproveResult struct {
	ListingIDs []int64       `json:"listing_ids"`
	Failures   []BulkFailure `json:"failures"`
}

// ReviewService implements the administrator-facing candidate workflow:
// list, inspect, approve into the catalog, reject, and bulk approve.
type ReviewService struct {
	candidates domain.CandidateRepository
	places     domain.RawPlaceRepository
	listings   domain.ListingRepository
	dedup      *DedupService
	notifier   domain.Notifier
	logger     *zap.Logger
}

// NewReviewService wires the review workflow.
func NewReviewService(
	candidates domain.CandidateRepository,
	places domain.RawPlaceRepository,
	listings domain.ListingRepository,
	dedup *DedupService,
	notifier domain.Notifier,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		candidates: candidates,
		places:     places,
		listings:   listings,
		dedup:      dedup,
		notifier:   notifier,
		logger:     logger,
	}
}

// List returns candidates matching the filter plus the unpaginated total.
func (s *ReviewService) List(ctx context.Context, f domain.CandidateFilter) ([]domain.ImportCandidate, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.candidates.List(ctx, f)
}

// Detail returns the comparison view for one candidate. The similarity list
// is recomputed so the admin sees current catalog distances, not the ones
// frozen at processing time.
func (s *ReviewService) Detail(ctx context.Context, id int64) (*CandidateDetail, error) {
	candidate, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	place, err := s.places.GetByID(ctx, candidate.RawPlaceID)
	if err != nil {
		return nil, err
	}

	detail := &CandidateDetail{Candidate: *candidate, RawPlace: place}

	m := candidate.MergedData
	dedupResult, err := s.dedup.FindSimilar(ctx, DedupInput{
		Name:      m.Name,
		Address:   m.Address,
		Phone:     m.Phone,
		Website:   m.Website,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
	})
	if err != nil {
		// The stored candidate is still useful without a live comparison.
		s.logger.Warn("comparison refresh failed", zap.Int64("candidate_id", id), zap.Error(err))
		return detail, nil
	}

	detail.Similar = dedupResult.Similar
	return detail, nil
}

// Approve materializes the candidate into a catalog listing: admin edits are
// merged over the stored data, photos are attached (downloaded assets
// preferred over provider references, first one primary), and both the
// candidate and its raw place are flagged imported with the new listing id.
func (s *ReviewService) Approve(ctx context.Context, id int64, req ApproveRequest) (int64, error) {
	candidate, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	merged, err := applyEdits(candidate.MergedData, req.Edits)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	photos := s.resolvePhotos(ctx, candidate.RawPlaceID, merged)

	return s.approve(ctx, candidate, merged, photos, req.ReviewerID, req.OwnerID, req.Featured)
}

// Reject marks the candidate rejected with the reviewer's reason. Terminal;
// no catalog side effects.
func (s *ReviewService) Reject(ctx context.Context, id int64, reviewerID, reason, notes string) error {
	if reason == "" {
		return fmt.Errorf("%w: reject reason is required", domain.ErrInvalidRequest)
	}

	candidate, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if candidate.Status != domain.CandidateStatusPending {
		return domain.ErrInvalidCandidateState
	}

	return s.candidates.MarkRejected(ctx, id, reviewerID, reason, notes)
}

// BulkApprove approves the given candidates with their stored data verbatim:
// no field edits, no photo-asset resolution, no owner assignment. Each
// failure is isolated into the result's failure list and processing
// continues past it.
func (s *ReviewService) BulkApprove(ctx context.Context, ids []int64, reviewerID string) *BulkApproveResult {
	result := &BulkApproveResult{}

	for _, id := range ids {
		candidate, err := s.candidates.GetByID(ctx, id)
		if err == nil {
			var listingID int64
			listingID, err = s.approve(ctx, candidate, candidate.MergedData, candidate.MergedData.PhotoRefs, reviewerID, nil, false)
			if err == nil {
				result.ListingIDs = append(result.ListingIDs, listingID)
				continue
			}
		}
		result.Failures = append(result.Failures, BulkFailure{CandidateID: id, Error: err.Error()})
	}

	return result
}

// approve is the shared import path. The pending->approved transition is a
// compare-and-set, so of two concurrent approvals exactly one proceeds; the
// remaining steps (listing create, photo attach, status updates) are not one
// atomic transaction, and a failure partway through is logged rather than
// rolled back.
func (s *ReviewService) approve(
	ctx context.Context,
	candidate *domain.ImportCandidate,
	merged domain.PlacePayload,
	photos []string,
	reviewerID string,
	ownerID *string,
	featured bool,
) (int64, error) {
	if candidate.Status != domain.CandidateStatusPending {
		return 0, domain.ErrInvalidCandidateState
	}

	claimed, err := s.candidates.MarkApproved(ctx, candidate.ID, reviewerID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, domain.ErrInvalidCandidateState
	}

	listingID, err := s.listings.Create(ctx, domain.NewListing{
		Name:       merged.Name,
		Address:    merged.Address,
		ProvinceID: candidate.SuggestedProvinceID,
		TypeID:     candidate.SuggestedTypeID,
		Latitude:   merged.Latitude,
		Longitude:  merged.Longitude,
		Phone:      merged.Phone,
		Website:    merged.Website,
		Rating:     merged.Rating,
		Verified:   true, // sourced from a trusted upstream
		Featured:   featured,
		OwnerID:    ownerID,
	})
	if err != nil {
		return 0, fmt.Errorf("create listing for candidate %d: %w", candidate.ID, err)
	}

	for i, url := range photos {
		photo := domain.ListingPhoto{
			ListingID: listingID,
			URL:       url,
			Position:  i,
			Primary:   i == 0,
		}
		if err := s.listings.AttachPhoto(ctx, photo); err != nil {
			s.logger.Warn("photo attach failed",
				zap.Int64("listing_id", listingID),
				zap.Int("position", i),
				zap.Error(err),
			)
		}
	}

	now := time.Now()
	if err := s.candidates.MarkImported(ctx, candidate.ID, listingID, now); err != nil {
		s.logger.Warn("candidate import flag update failed", zap.Int64("candidate_id", candidate.ID), zap.Error(err))
	}
	if err := s.places.MarkImported(ctx, candidate.RawPlaceID, listingID); err != nil {
		s.logger.Warn("raw place import flag update failed", zap.Int64("raw_place_id", candidate.RawPlaceID), zap.Error(err))
	}

	s.dedup.InvalidateCatalogCache(ctx)

	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(nctx, "listing.imported", map[string]interface{}{
			"listing_id":   listingID,
			"candidate_id": candidate.ID,
			"reviewer_id":  reviewerID,
		})
	}()

	return listingID, nil
}

// resolvePhotos prefers photo assets already downloaded for the raw place
// over the provider's photo references.
func (s *ReviewService) resolvePhotos(ctx context.Context, rawPlaceID int64, merged domain.PlacePayload) []string {
	downloaded, err := s.places.DownloadedPhotos(ctx, rawPlaceID)
	if err != nil {
		s.logger.Warn("downloaded photo lookup failed", zap.Int64("raw_place_id", rawPlaceID), zap.Error(err))
	}
	if len(downloaded) > 0 {
		return downloaded
	}
	return merged.PhotoRefs
}

// applyEdits overlays admin-supplied field edits onto the payload via a JSON
// round trip, so edit keys follow the payload's JSON names and unknown keys
// are dropped.
func applyEdits(payload domain.PlacePayload, edits map[string]interface{}) (domain.PlacePayload, error) {
	if len(edits) == 0 {
		return payload, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return payload, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return payload, err
	}
	for k, v := range edits {
		m[k] = v
	}
	raw, err = json.Marshal(m)
	if err != nil {
		return payload, err
	}

	var out domain.PlacePayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return payload, err
	}
	return out, nil
}
