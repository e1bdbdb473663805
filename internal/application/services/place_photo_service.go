package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// BuildPhotoProxyURL renders the public proxy URL for a provider photo
// reference. Returns "" for refs that are not provider photo names.
func BuildPhotoProxyURL(proxyBaseURL, photoRef string) string {
	if !strings.HasPrefix(photoRef, "places/") {
		return ""
	}
	return fmt.Sprintf("%s/v1/places/photos/%s", strings.TrimRight(proxyBaseURL, "/"), photoRef)
}

// PlacePhotoService proxies provider photo bytes so the provider API key
// never reaches clients.
type PlacePhotoService struct {
	places providers.PlacesProvider
}

func NewPlacePhotoService(places providers.PlacesProvider) *PlacePhotoService {
	return &PlacePhotoService{places: places}
}

// Fetch returns the raw photo bytes for a photo reference. Refs must be
// full provider photo names ("places/.../photos/...").
func (s *PlacePhotoService) Fetch(ctx context.Context, photoRef string) ([]byte, error) {
	if !strings.HasPrefix(photoRef, "places/") {
		return nil, apperrors.NewValidationError("photo reference must start with places/")
	}
	return s.places.FetchPhoto(ctx, photoRef)
}
