package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RawPlaceRepository provides access to harvested raw place records.
type RawPlaceRepository interface {
	GetByID(ctx context.Context, id int64) (*RawPlace, error)
	// ListPendingIDs returns ids of raw places awaiting processing, oldest
	// first, capped at limit.
	ListPendingIDs(ctx context.Context, limit int) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status RawPlaceStatus) error
	MarkImported(ctx context.Context, id int64, listingID int64) error
	// DownloadedPhotos returns URLs of photo assets already mirrored for the
	// raw place, in display order. Empty when none were downloaded.
	DownloadedPhotos(ctx context.Context, rawPlaceID int64) ([]string, error)
}

// CandidateRepository persists import candidates.
type CandidateRepository interface {
	GetByID(ctx context.Context, id int64) (*ImportCandidate, error)
	GetByRawPlaceID(ctx context.Context, rawPlaceID int64) (*ImportCandidate, error)
	Create(ctx context.Context, c *ImportCandidate) error
	Update(ctx context.Context, c *ImportCandidate) error
	List(ctx context.Context, f CandidateFilter) ([]ImportCandidate, int, error)
	// MarkApproved transitions a candidate from pending to approved only if
	// it is still pending, and reports whether the transition happened. This
	// is the guard that makes a double approve lose cleanly.
	MarkApproved(ctx context.Context, id int64, reviewerID string) (bool, error)
	MarkRejected(ctx context.Context, id int64, reviewerID, reason, notes string) error
	MarkImported(ctx context.Context, id int64, listingID int64, at time.Time) error
}

// ListingRepository is the narrow catalog interface the import core is
// allowed to use: create a listing, attach photos, and read the comparison
// projection for duplicate detection.
type ListingRepository interface {
	Create(ctx context.Context, l NewListing) (int64, error)
	AttachPhoto(ctx context.Context, p ListingPhoto) error
	ActiveRefs(ctx context.Context) ([]ListingRef, error)
}

// ProvinceRepository loads the administrative regions for the province index.
type ProvinceRepository interface {
	All(ctx context.Context) ([]Province, error)
}

// SyncRunRepository persists batch-run records.
type SyncRunRepository interface {
	Create(ctx context.Context, r *SyncRun) error
	Update(ctx context.Context, r *SyncRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)
	List(ctx context.Context, f SyncRunFilter) ([]SyncRun, int, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AIClient is a minimal completion interface for the classifier fallback.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers fire-and-forget admin notifications. Implementations
// must never block the import path on delivery.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]interface{})
}
