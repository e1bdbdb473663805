package providers

import (
	"context"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// LocationBias biases a text search toward a circle around a point.
type LocationBias struct {
	Center       entities.Location
	RadiusMeters float64
}

// PlacesProvider is the outbound places-search contract. Implementations
// wrap every call in the resilient retry layer; transient provider failures
// never surface here, only exhaustion or fatal classification.
type PlacesProvider interface {
	// TextSearch runs a free-text place search
	TextSearch(ctx context.Context, query string, maxResults int, bias *LocationBias) ([]entities.CandidatePlace, error)

	// FetchPhoto fetches raw photo bytes for a provider photo reference
	FetchPhoto(ctx context.Context, photoRef string) ([]byte, error)

	// GetDetails fetches detail-level data for one place
	GetDetails(ctx context.Context, externalID string) (*entities.PlaceDetails, error)
}
