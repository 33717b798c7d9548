package usecase

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

const testFallbackProvinceID = 99

func newTestPipeline(places *fakeRawPlaceRepo, candidates *fakeCandidateRepo, refs []domain.ListingRef) *PipelineService {
	logger := zap.NewNop()
	dedup, _ := newTestDedup(refs)
	classifier := NewClassifierService(nil, ClassifierConfig{}, logger)
	index := NewProvinceIndex(context.Background(), &fakeProvinceRepo{provinces: testProvinces()}, logger)
	return NewPipelineService(places, candidates, dedup, classifier, index,
		PipelineConfig{FallbackProvinceID: testFallbackProvinceID}, logger)
}

func pendingPlace(id int64, payload domain.PlacePayload) *domain.RawPlace {
	return &domain.RawPlace{
		ID:         id,
		ExternalID: "ext-place",
		Payload:    payload,
		Status:     domain.RawPlaceStatusPending,
	}
}

func TestProcessPlace(t *testing.T) {
	ctx := context.Background()

	t.Run("clean place becomes a pending candidate", func(t *testing.T) {
		rating := 4.5
		places := newFakeRawPlaceRepo(pendingPlace(1, domain.PlacePayload{
			Name:      "Doi Luang Camping Ground",
			Address:   "Chiang Mai",
			Latitude:  f64(18.80),
			Longitude: f64(98.98),
			Phone:     "0812345678",
			Website:   "https://doiluangcamp.example",
			Rating:    &rating,
		}))
		candidates := newFakeCandidateRepo()
		svc := newTestPipeline(places, candidates, nil)

		outcome, err := svc.ProcessPlace(ctx, 1)
		if err != nil {
			t.Fatalf("ProcessPlace: %v", err)
		}
		if !outcome.Created {
			t.Error("Created = false, want true")
		}
		if outcome.IsDuplicate {
			t.Error("IsDuplicate = true, want false")
		}
		if outcome.Confidence != 0.9 {
			t.Errorf("Confidence = %v, want 0.9 from the keyword hit", outcome.Confidence)
		}

		c, err := candidates.GetByID(ctx, outcome.CandidateID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if c.Status != domain.CandidateStatusPending {
			t.Errorf("Status = %q, want pending", c.Status)
		}
		if c.SuggestedTypeID != domain.ListingTypeBasicCamping {
			t.Errorf("SuggestedTypeID = %d, want basic camping", c.SuggestedTypeID)
		}
		if c.SuggestedProvinceID == nil || *c.SuggestedProvinceID != 2 {
			t.Errorf("SuggestedProvinceID = %v, want Chiang Mai", c.SuggestedProvinceID)
		}
		if len(c.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", c.Warnings)
		}
		if got := places.statuses[1]; len(got) != 2 ||
			got[0] != domain.RawPlaceStatusProcessing || got[1] != domain.RawPlaceStatusCompleted {
			t.Errorf("status transitions = %v, want [processing completed]", got)
		}
	})

	t.Run("sparse place collects every warning", func(t *testing.T) {
		rating := 2.1
		places := newFakeRawPlaceRepo(pendingPlace(2, domain.PlacePayload{
			Name:      "Windy Ridge Campsite",
			Latitude:  f64(16.6510),
			Longitude: f64(101.0400),
			Rating:    &rating,
		}))
		candidates := newFakeCandidateRepo()
		svc := newTestPipeline(places, candidates, []domain.ListingRef{
			{ID: 3, Name: "Khao Kho Coffee Farm", Latitude: f64(16.6500), Longitude: f64(101.0400)},
		})

		outcome, err := svc.ProcessPlace(ctx, 2)
		if err != nil {
			t.Fatalf("ProcessPlace: %v", err)
		}

		c, _ := candidates.GetByID(ctx, outcome.CandidateID)
		want := []string{
			"Missing phone number",
			"Missing website",
			"Low or missing rating",
			"1 similar listing(s) found",
		}
		if !reflect.DeepEqual(c.Warnings, want) {
			t.Errorf("Warnings = %v, want %v", c.Warnings, want)
		}
	})

	t.Run("ambiguous similarity discounts confidence", func(t *testing.T) {
		places := newFakeRawPlaceRepo(pendingPlace(3, domain.PlacePayload{
			Name:      "Windy Ridge Campsite",
			Latitude:  f64(16.6510),
			Longitude: f64(101.0400),
			Phone:     "0811111111",
			Website:   "https://windyridge.example",
			Rating:    f64(4.0),
		}))
		candidates := newFakeCandidateRepo()
		// A nearby listing with an unrelated name scores 0.6: above the
		// ambiguity threshold, below the duplicate one.
		svc := newTestPipeline(places, candidates, []domain.ListingRef{
			{ID: 3, Name: "Khao Kho Coffee Farm", Latitude: f64(16.6500), Longitude: f64(101.0400)},
		})

		outcome, err := svc.ProcessPlace(ctx, 3)
		if err != nil {
			t.Fatalf("ProcessPlace: %v", err)
		}
		if outcome.IsDuplicate {
			t.Error("IsDuplicate = true, want false")
		}
		if outcome.Confidence != 0.72 {
			t.Errorf("Confidence = %v, want 0.72 (0.9 discounted)", outcome.Confidence)
		}
	})

	t.Run("duplicate is auto-rejected at high confidence", func(t *testing.T) {
		places := newFakeRawPlaceRepo(pendingPlace(4, domain.PlacePayload{
			Name:    "Riverside Retreat",
			Phone:   "+66 81 234 5678",
			Website: "https://riverside.example",
			Rating:  f64(4.2),
		}))
		candidates := newFakeCandidateRepo()
		svc := newTestPipeline(places, candidates, []domain.ListingRef{
			{ID: 11, Name: "Riverside Retreat Official", Phone: "+66812345678"},
		})

		outcome, err := svc.ProcessPlace(ctx, 4)
		if err != nil {
			t.Fatalf("ProcessPlace: %v", err)
		}
		if !outcome.IsDuplicate {
			t.Fatal("IsDuplicate = false, want true")
		}
		if outcome.Confidence < 0.9 {
			t.Errorf("Confidence = %v, want >= 0.9 for a duplicate", outcome.Confidence)
		}

		c, _ := candidates.GetByID(ctx, outcome.CandidateID)
		if c.Status != domain.CandidateStatusRejected {
			t.Errorf("Status = %q, want rejected", c.Status)
		}
		if c.RejectReason != "duplicate of existing listing" {
			t.Errorf("RejectReason = %q", c.RejectReason)
		}
		if c.DuplicateOf == nil || *c.DuplicateOf != 11 {
			t.Errorf("DuplicateOf = %v, want 11", c.DuplicateOf)
		}
	})

	t.Run("no coordinates falls back to the configured province", func(t *testing.T) {
		places := newFakeRawPlaceRepo(pendingPlace(5, domain.PlacePayload{
			Name:    "Hidden Valley Camp",
			Phone:   "0812222222",
			Website: "https://hiddenvalley.example",
			Rating:  f64(4.8),
		}))
		candidates := newFakeCandidateRepo()
		svc := newTestPipeline(places, candidates, nil)

		outcome, err := svc.ProcessPlace(ctx, 5)
		if err != nil {
			t.Fatalf("ProcessPlace: %v", err)
		}
		c, _ := candidates.GetByID(ctx, outcome.CandidateID)
		if c.SuggestedProvinceID == nil || *c.SuggestedProvinceID != testFallbackProvinceID {
			t.Errorf("SuggestedProvinceID = %v, want fallback %d", c.SuggestedProvinceID, testFallbackProvinceID)
		}
	})

	t.Run("second run updates the same candidate", func(t *testing.T) {
		places := newFakeRawPlaceRepo(pendingPlace(6, domain.PlacePayload{
			Name:    "Hidden Valley Camp",
			Phone:   "0812222222",
			Website: "https://hiddenvalley.example",
			Rating:  f64(4.8),
		}))
		candidates := newFakeCandidateRepo()
		svc := newTestPipeline(places, candidates, nil)

		first, err := svc.ProcessPlace(ctx, 6)
		if err != nil {
			t.Fatalf("first ProcessPlace: %v", err)
		}

		// The provider payload changed between harvests.
		places.places[6].Payload.Phone = ""

		second, err := svc.ProcessPlace(ctx, 6)
		if err != nil {
			t.Fatalf("second ProcessPlace: %v", err)
		}
		if second.Created {
			t.Error("second run Created = true, want update")
		}
		if second.CandidateID != first.CandidateID {
			t.Errorf("candidate id changed: %d then %d", first.CandidateID, second.CandidateID)
		}
		if n := len(candidates.candidates); n != 1 {
			t.Errorf("candidate count = %d, want 1", n)
		}

		c, _ := candidates.GetByID(ctx, second.CandidateID)
		want := []string{"Missing phone number"}
		if !reflect.DeepEqual(c.Warnings, want) {
			t.Errorf("Warnings = %v, want %v (latest run supersedes)", c.Warnings, want)
		}
	})

	t.Run("unknown raw place fails", func(t *testing.T) {
		svc := newTestPipeline(newFakeRawPlaceRepo(), newFakeCandidateRepo(), nil)
		if _, err := svc.ProcessPlace(ctx, 404); err == nil {
			t.Error("expected error for unknown raw place")
		}
	})

	t.Run("dedup failure marks the raw place failed", func(t *testing.T) {
		places := newFakeRawPlaceRepo(pendingPlace(7, domain.PlacePayload{Name: "Anywhere Camp"}))
		candidates := newFakeCandidateRepo()

		logger := zap.NewNop()
		dedup := NewDedupService(&fakeListingRepo{refsErr: errStore}, newFakeCache(), DedupConfig{}, logger)
		classifier := NewClassifierService(nil, ClassifierConfig{}, logger)
		index := NewProvinceIndex(ctx, &fakeProvinceRepo{provinces: testProvinces()}, logger)
		svc := NewPipelineService(places, candidates, dedup, classifier, index,
			PipelineConfig{FallbackProvinceID: testFallbackProvinceID}, logger)

		if _, err := svc.ProcessPlace(ctx, 7); err == nil {
			t.Fatal("expected error when the catalog cannot be loaded")
		}
		got := places.statuses[7]
		if len(got) != 2 || got[1] != domain.RawPlaceStatusFailed {
			t.Errorf("status transitions = %v, want ending in failed", got)
		}
	})
}
