package domain

import "time"

// RawPlaceStatus tracks how far a harvested place record has moved through
// the ingestion pipeline.
type RawPlaceStatus string

const (
	RawPlaceStatusPending    RawPlaceStatus = "pending"
	RawPlaceStatusProcessing RawPlaceStatus = "processing"
	RawPlaceStatusCompleted  RawPlaceStatus = "completed"
	RawPlaceStatusFailed     RawPlaceStatus = "failed"
)

// PlacePayload is the structured payload harvested from the place-data
// provider. Pointer fields distinguish "absent" from zero values.
type PlacePayload struct {
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingsTotal int      `json:"ratings_total,omitempty"`
	PriceLevel   int      `json:"price_level,omitempty"`
	Types        []string `json:"types,omitempty"`
	PhotoRefs    []string `json:"photo_refs,omitempty"`
}

// HasCoordinates reports whether the payload carries a usable geo point.
func (p PlacePayload) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// RawPlace is one unprocessed listing record sourced from the external
// provider. The upstream fetcher creates these; the pipeline only moves the
// status forward and the review workflow flips the import flags.
type RawPlace struct {
	ID                int64          `json:"id"`
	ExternalID        string         `json:"external_id"`
	ExternalIDHash    string         `json:"external_id_hash"`
	Payload           PlacePayload   `json:"payload"`
	FetchedAt         time.Time      `json:"fetched_at"`
	Status            RawPlaceStatus `json:"status"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	Imported          bool           `json:"imported"`
	ImportedAt        *time.Time     `json:"imported_at,omitempty"`
	ImportedListingID *int64         `json:"imported_listing_id,omitempty"`
}
