package entities

// KeywordType categorizes where a search keyword came from.
type KeywordType string

const (
	KeywordTypeFood     KeywordType = "food"
	KeywordTypeCafe     KeywordType = "cafe"
	KeywordTypeActivity KeywordType = "activity"
	KeywordTypeMood     KeywordType = "mood"
)

// KeywordCandidate is a weighted search term plus the terms a returned place
// must match. Produced upstream from meeting-survey context; read-only here.
type KeywordCandidate struct {
	Keyword    string      `json:"keyword"`
	Weight     float64     `json:"weight"`
	MatchTerms []string    `json:"match_terms"`
	Type       KeywordType `json:"type"`
}

// SearchPlan describes one venue search: the weighted keywords to fan out
// over, an optional origin to bias results around, and a broad fallback
// keyword that guarantees a non-empty result. Immutable per search.
type SearchPlan struct {
	Keywords        []KeywordCandidate `json:"keywords"`
	Origin          *Location          `json:"origin,omitempty"`
	FallbackKeyword string             `json:"fallback_keyword"`
}

// RankedItem is one venue in a finished search result. LikeCount/IsLiked are
// viewer-relative and recomputed on every cache read, never stored per-viewer.
type RankedItem struct {
	VenueID           string   `json:"venue_id"`
	ExternalID        string   `json:"external_id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Rating            float64  `json:"rating"`
	RatingCount       int      `json:"rating_count"`
	OpenNow           *bool    `json:"open_now,omitempty"`
	PhotoURLs         []string `json:"photo_urls,omitempty"`
	Link              string   `json:"link,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	TopReview         *Review  `json:"top_review,omitempty"`
	AddressDescriptor string   `json:"address_descriptor,omitempty"`
	LikeCount         int      `json:"like_count"`
	IsLiked           bool     `json:"is_liked"`
}

// SearchResult is the per-meeting cached search payload.
type SearchResult struct {
	Items []RankedItem `json:"items"`
}
