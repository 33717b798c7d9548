package domain

// Province is an administrative region with a centroid coordinate. Loaded
// once at startup into the province index; never mutated by this service.
type Province struct {
	ID        int64   `json:"id"`
	NameEN    string  `json:"name_en"`
	NameLocal string  `json:"name_local,omitempty"`
	Slug      string  `json:"slug"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
