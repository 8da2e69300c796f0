package domain

import (
	"encoding/json"
	"time"
)

// Hotel is one candidate offer as returned by the search stage. Identity is
// HotelID; everything else may change between fetches of the same id.
// RawJSON carries the provider payload verbatim for display/debugging and is
// never interpreted by the pipeline.
type Hotel struct {
	HotelID     string          `json:"hotel_id"`
	Name        *string         `json:"name,omitempty"`
	Address     *string         `json:"address,omitempty"`
	City        *string         `json:"city,omitempty"`
	Country     *string         `json:"country,omitempty"`
	Lat         *float64        `json:"latitude,omitempty"`
	Lon         *float64        `json:"longitude,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Currency    *string         `json:"currency,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`
	ReviewScore *float64        `json:"review_score,omitempty"`
	ReviewCount *int            `json:"review_count,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Description *string         `json:"description,omitempty"`
	Images      []string        `json:"images,omitempty"`
	URL         *string         `json:"url,omitempty"`
	RawJSON     json.RawMessage `json:"raw_data,omitempty"`
}

// SearchParams is the structured form of one demand. Built once per request
// by the extractor, read-only afterwards.
type SearchParams struct {
	Location    *string  `json:"location"`
	CheckIn     *string  `json:"check_in"`
	CheckOut    *string  `json:"check_out"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	Adults      int      `json:"adults"`
	Children    int      `json:"children"`
	Rooms       int      `json:"rooms"`
	Preferences []string `json:"preferences"`
}

// HotelRecord is the persisted snapshot for one hotel id: the last-seen full
// payload plus bookkeeping timestamps. At most one record per id.
type HotelRecord struct {
	HotelID   string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HotelSummary is the minimized per-candidate view sent to the inference
// service for ranking, to bound prompt size.
type HotelSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Price     *float64 `json:"price"`
	Rating    *float64 `json:"rating"`
	Amenities string   `json:"amenities"`
}

// MatchResult is the final ranked answer for one demand.
type MatchResult struct {
	Demand  string       `json:"user_demand"`
	Params  SearchParams `json:"extracted_parameters"`
	Hotels  []Hotel      `json:"matched_hotels"`
	Total   int          `json:"total_results"`
	Message string       `json:"message,omitempty"`
}
