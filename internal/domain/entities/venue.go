package entities

import (
	"time"
)

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Review is a single highlighted review attached to a venue
type Review struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// VenueRecord is the persisted venue entity. ExternalID is the provider's
// place id and is immutable once set. Enrichment fields (Summary,
// RecommendReason, TopReview*, AddressDescriptor) are only ever replaced
// with non-empty values; a refresh never erases them.
type VenueRecord struct {
	ID                string    `json:"id" db:"id"`
	ExternalID        string    `json:"external_id" db:"external_id"`
	Name              string    `json:"name" db:"name"`
	Address           string    `json:"address" db:"address"`
	Location          Location  `json:"location" db:"-"`
	Rating            float64   `json:"rating" db:"rating"`
	RatingCount       int       `json:"rating_count" db:"rating_count"`
	OpenNow           *bool     `json:"open_now,omitempty" db:"open_now"`
	Photos            []string  `json:"photos,omitempty" db:"-"`
	Link              string    `json:"link,omitempty" db:"link"`
	Summary           string    `json:"summary,omitempty" db:"summary"`
	RecommendReason   string    `json:"recommend_reason,omitempty" db:"recommend_reason"`
	TopReviewRating   int       `json:"top_review_rating,omitempty" db:"top_review_rating"`
	TopReviewText     string    `json:"top_review_text,omitempty" db:"top_review_text"`
	AddressDescriptor string    `json:"address_descriptor,omitempty" db:"address_descriptor"`
	Deleted           bool      `json:"deleted" db:"is_deleted"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// CandidatePlace is a raw provider result item. It exists only for the
// duration of one search call; optional provider fields stay nil when the
// provider omitted them so the upsert merge can tell "absent" from "zero".
type CandidatePlace struct {
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount *int      `json:"rating_count,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Types       []string  `json:"types,omitempty"`
	OpenNow     *bool     `json:"open_now,omitempty"`
	PhotoRefs   []string  `json:"photo_refs,omitempty"`
}

// RatingOrZero returns the rating with absent treated as 0.
func (p CandidatePlace) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// PlaceDetails is the subset of provider detail data the pipeline consumes.
type PlaceDetails struct {
	ExternalID  string
	Name        string
	Address     string
	Rating      *float64
	RatingCount *int
	Location    *Location
	Types       []string
}

// LikeState is the per-venue like aggregate relative to one viewer.
type LikeState struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}
