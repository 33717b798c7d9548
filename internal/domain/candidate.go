package domain

import "time"

// CandidateStatus is the review lifecycle of an import candidate.
// pending -> approved | rejected, approved -> imported.
// rejected and imported are terminal.
type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
	CandidateStatusImported CandidateStatus = "imported"
)

// Terminal reports whether the status admits no further transitions.
func (s CandidateStatus) Terminal() bool {
	return s == CandidateStatusRejected || s == CandidateStatusImported
}

// ImportCandidate is the pipeline's work product for one raw place: the
// reviewable combination of duplicate verdict, suggested type and province,
// confidence, and the merged listing data an admin can edit before approval.
// At most one live candidate exists per raw place.
type ImportCandidate struct {
	ID                  int64           `json:"id"`
	RawPlaceID          int64           `json:"raw_place_id"`
	Confidence          float64         `json:"confidence"`
	IsDuplicate         bool            `json:"is_duplicate"`
	DuplicateOf         *int64          `json:"duplicate_of,omitempty"`
	SuggestedProvinceID *int64          `json:"suggested_province_id,omitempty"`
	SuggestedTypeID     int             `json:"suggested_type_id"`
	Warnings            []string        `json:"warnings"`
	MergedData          PlacePayload    `json:"merged_data"`
	Status              CandidateStatus `json:"status"`
	ReviewerID          *string         `json:"reviewer_id,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewed_at,omitempty"`
	RejectReason        string          `json:"reject_reason,omitempty"`
	ReviewNotes         string          `json:"review_notes,omitempty"`
	ImportedListingID   *int64          `json:"imported_listing_id,omitempty"`
	ImportedAt          *time.Time      `json:"imported_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// SimilarityResult is one row of the duplicate comparison view: an existing
// listing, how closely it resembles the candidate, and how far away it is.
// DistanceKM is negative when either side lacks coordinates. Not persisted.
type SimilarityResult struct {
	ListingID  int64   `json:"listing_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Score      float64 `json:"score"`
	DistanceKM float64 `json:"distance_km"`
}

// CandidateFilter narrows candidate listings. Nil fields mean "any".
type CandidateFilter struct {
	Status        *CandidateStatus
	MinConfidence *float64
	IsDuplicate   *bool
	ProvinceID    *int64
	Limit         int
	Offset        int
}
