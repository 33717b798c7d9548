package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

const (
	// duplicateMinConfidence is the floor applied when the dedup verdict is
	// "duplicate": a likely duplicate is itself a confident, actionable
	// signal regardless of how sure the classifier was.
	duplicateMinConfidence = 0.9

	// ambiguityDiscount is applied when the top similarity crosses 0.5
	// without reaching the duplicate threshold: ambiguous similarity lowers
	// trust in the suggested import.
	ambiguityThreshold = 0.5
	ambiguityDiscount  = 0.8

	lowRatingThreshold = 3.0
)

// Validation warning texts. The review UI matches on these strings.
const (
	warnMissingPhone   = "Missing phone number"
	warnMissingWebsite = "Missing website"
	warnLowRating      = "Low or missing rating"
)

// ProcessOutcome summarizes one orchestrator pass over a raw place.
type ProcessOutcome struct {
	CandidateID int64
	Created     bool
	IsDuplicate bool
	Confidence  float64
}

// PipelineConfig holds configuration for the pipeline orchestrator.
type PipelineConfig struct {
	// FallbackProvinceID is assigned when the province index reports no
	// match (or the place has no coordinates).
	FallbackProvinceID int64
}

// PipelineService turns one raw place into an import candidate: it runs the
// deduplication engine, the type classifier and the province index, folds
// their outputs into a confidence score and validation warnings, and upserts
// the candidate keyed by raw place. Single pass, no retries.
type PipelineService struct {
	places     domain.RawPlaceRepository
	candidates domain.CandidateRepository
	dedup      *DedupService
	classifier *ClassifierService
	provinces  *ProvinceIndex
	fallback   int64
	logger     *zap.Logger
}

// NewPipelineService wires the orchestrator.
func NewPipelineService(
	places domain.RawPlaceRepository,
	candidates domain.CandidateRepository,
	dedup *DedupService,
	classifier *ClassifierService,
	provinces *ProvinceIndex,
	cfg PipelineConfig,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		places:     places,
		candidates: candidates,
		dedup:      dedup,
		classifier: classifier,
		provinces:  provinces,
		fallback:   cfg.FallbackProvinceID,
		logger:     logger,
	}
}

// ProcessPlace runs the pipeline for one raw place. A failure here is an
// item-level failure: the batch runner counts it and moves on.
func (s *PipelineService) ProcessPlace(ctx context.Context, rawPlaceID int64) (*ProcessOutcome, error) {
	place, err := s.places.GetByID(ctx, rawPlaceID)
	if err != nil {
		return nil, fmt.Errorf("load raw place %d: %w", rawPlaceID, err)
	}

	if err := s.places.UpdateStatus(ctx, place.ID, domain.RawPlaceStatusProcessing); err != nil {
		return nil, fmt.Errorf("mark raw place %d processing: %w", place.ID, err)
	}

	outcome, err := s.process(ctx, place)
	if err != nil {
		if statusErr := s.places.UpdateStatus(ctx, place.ID, domain.RawPlaceStatusFailed); statusErr != nil {
			s.logger.Warn("failed to mark raw place failed", zap.Int64("raw_place_id", place.ID), zap.Error(statusErr))
		}
		return nil, err
	}

	if err := s.places.UpdateStatus(ctx, place.ID, domain.RawPlaceStatusCompleted); err != nil {
		s.logger.Warn("failed to mark raw place completed", zap.Int64("raw_place_id", place.ID), zap.Error(err))
	}

	return outcome, nil
}

func (s *PipelineService) process(ctx context.Context, place *domain.RawPlace) (*ProcessOutcome, error) {
	p := place.Payload

	dedupResult, err := s.dedup.FindSimilar(ctx, DedupInput{
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		Website:   p.Website,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("dedup raw place %d: %w", place.ID, err)
	}

	classification := s.classifier.Classify(ctx, p)

	provinceID := s.resolveProvince(p)

	confidence := s.aggregateConfidence(classification.Confidence, dedupResult)
	warnings := buildWarnings(p, dedupResult.Similar)

	candidate := &domain.ImportCandidate{
		RawPlaceID:          place.ID,
		Confidence:          confidence,
		IsDuplicate:         dedupResult.IsDuplicate,
		DuplicateOf:         dedupResult.DuplicateOf,
		SuggestedProvinceID: provinceID,
		SuggestedTypeID:     classification.TypeID,
		Warnings:            warnings,
		MergedData:          p,
		Status:              domain.CandidateStatusPending,
	}
	// Auto-reject obvious duplicates so a human doesn't have to.
	if dedupResult.IsDuplicate {
		candidate.Status = domain.CandidateStatusRejected
		candidate.RejectReason = "duplicate of existing listing"
	}

	created, err := s.upsert(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("upsert candidate for raw place %d: %w", place.ID, err)
	}

	s.logger.Info("raw place processed",
		zap.Int64("raw_place_id", place.ID),
		zap.Int64("candidate_id", candidate.ID),
		zap.Float64("confidence", confidence),
		zap.Bool("is_duplicate", dedupResult.IsDuplicate),
		zap.Int("type_id", classification.TypeID),
		zap.String("type_source", classification.Source),
	)

	return &ProcessOutcome{
		CandidateID: candidate.ID,
		Created:     created,
		IsDuplicate: dedupResult.IsDuplicate,
		Confidence:  confidence,
	}, nil
}

// resolveProvince matches the place coordinates against the province index,
// defaulting when there are no coordinates or no centroid within range.
func (s *PipelineService) resolveProvince(p domain.PlacePayload) *int64 {
	if p.HasCoordinates() {
		province, err := s.provinces.MatchByCoordinates(*p.Latitude, *p.Longitude)
		if err == nil {
			return &province.ID
		}
		if !errors.Is(err, domain.ErrNoMatch) {
			s.logger.Warn("province match failed", zap.Error(err))
		}
	}
	fallback := s.fallback
	return &fallback
}

// aggregateConfidence folds the dedup verdict into the classifier confidence
// and rounds to two decimal places, clamped to [0,1].
func (s *PipelineService) aggregateConfidence(base float64, dedup *DedupResult) float64 {
	confidence := base
	if dedup.IsDuplicate {
		if confidence < duplicateMinConfidence {
			confidence = duplicateMinConfidence
		}
	} else if len(dedup.Similar) > 0 && dedup.Similar[0].Score > ambiguityThreshold {
		confidence *= ambiguityDiscount
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return math.Round(confidence*100) / 100
}

// buildWarnings generates the validation warnings for the review UI, in a
// fixed order: phone, website, rating, similar listings.
func buildWarnings(p domain.PlacePayload, similar []domain.SimilarityResult) []string {
	var warnings []string
	if p.Phone == "" {
		warnings = append(warnings, warnMissingPhone)
	}
	if p.Website == "" {
		warnings = append(warnings, warnMissingWebsite)
	}
	if p.Rating == nil || *p.Rating < lowRatingThreshold {
		warnings = append(warnings, warnLowRating)
	}
	if n := len(similar); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d similar listing(s) found", n))
	}
	return warnings
}

// upsert looks up the existing candidate for the raw place and updates it in
// place, inserting only when none exists. This keeps exactly one candidate
// per raw place, with the latest run's data superseding earlier runs.
func (s *PipelineService) upsert(ctx context.Context, candidate *domain.ImportCandidate) (created bool, err error) {
	existing, err := s.candidates.GetByRawPlaceID(ctx, candidate.RawPlaceID)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return true, s.candidates.Create(ctx, candidate)
		}
		return false, err
	}

	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt
	return false, s.candidates.Update(ctx, candidate)
}
