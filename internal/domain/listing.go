package domain

import "time"

// Listing type ids. Small fixed enumeration used by the classifier and the
// catalog; kept as ints because the provider taxonomy maps onto them.
const (
	ListingTypeBasicCamping = 1
	ListingTypeGlamping     = 2
	ListingTypeTentedResort = 3
	ListingTypeCabin        = 4
)

// ListingTypeName returns the display name for a listing type id.
func ListingTypeName(id int) string {
	switch id {
	case ListingTypeBasicCamping:
		return "Basic camping"
	case ListingTypeGlamping:
		return "Glamping"
	case ListingTypeTentedResort:
		return "Tented resort"
	case ListingTypeCabin:
		return "Cabin / bungalow"
	default:
		return "Unknown"
	}
}

// Listing is a published catalog entry in the marketplace. The ingestion
// core only creates listings and attaches photos; everything else about
// listings belongs to the surrounding platform.
type Listing struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address,omitempty"`
	ProvinceID *int64     `json:"province_id,omitempty"`
	TypeID     int        `json:"type_id"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Website    string     `json:"website,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Verified   bool       `json:"verified"`
	Featured   bool       `json:"featured"`
	OwnerID    *string    `json:"owner_id,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
}

// NewListing is the narrow "create listing" input the import workflow is
// allowed to use.
type NewListing struct {
	Name       string
	Address    string
	ProvinceID *int64
	TypeID     int
	Latitude   *float64
	Longitude  *float64
	Phone      string
	Website    string
	Rating     *float64
	Verified   bool
	Featured   bool
	OwnerID    *string
}

// ListingPhoto attaches one photo to a listing. Position preserves the
// provider ordering; exactly one photo per listing should be primary.
type ListingPhoto struct {
	ID        int64  `json:"id"`
	ListingID int64  `json:"listing_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
	Primary   bool   `json:"primary"`
}

// ListingRef is the comparison projection of a listing used by duplicate
// detection: just the identity signals, nothing else.
type ListingRef struct {
	ID        int64
	Name      string
	Address   string
	Phone     string
	Website   string
	Latitude  *float64
	Longitude *float64
}
