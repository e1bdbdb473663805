package googleplaces

import (
	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// Wire types for the Places API (New). Only the fields the pipeline consumes
// are mapped; the field masks above keep the responses to exactly these.

type textSearchRequest struct {
	TextQuery      string        `json:"textQuery"`
	LanguageCode   string        `json:"languageCode,omitempty"`
	RegionCode     string        `json:"regionCode,omitempty"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type textSearchResponse struct {
	Places []placePayload `json:"places"`
}

type placePayload struct {
	ID                  string        `json:"id"`
	DisplayName         displayName   `json:"displayName"`
	FormattedAddress    string        `json:"formattedAddress"`
	Rating              *float64      `json:"rating,omitempty"`
	UserRatingCount     *int          `json:"userRatingCount,omitempty"`
	Location            *latLng       `json:"location,omitempty"`
	Types               []string      `json:"types,omitempty"`
	CurrentOpeningHours *openingHours `json:"currentOpeningHours,omitempty"`
	Photos              []photo       `json:"photos,omitempty"`
}

type displayName struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type openingHours struct {
	OpenNow *bool `json:"openNow,omitempty"`
}

type photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx,omitempty"`
	HeightPx int    `json:"heightPx,omitempty"`
}

func (p placePayload) toCandidate() entities.CandidatePlace {
	candidate := entities.CandidatePlace{
		ExternalID:  p.ID,
		Name:        p.DisplayName.Text,
		Address:     p.FormattedAddress,
		Rating:      p.Rating,
		RatingCount: p.UserRatingCount,
		Types:       p.Types,
	}
	if p.Location != nil {
		candidate.Location = &entities.Location{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		}
	}
	if p.CurrentOpeningHours != nil {
		candidate.OpenNow = p.CurrentOpeningHours.OpenNow
	}
	for _, ph := range p.Photos {
		if ph.Name != "" {
			candidate.PhotoRefs = append(candidate.PhotoRefs, ph.Name)
		}
	}
	return candidate
}
