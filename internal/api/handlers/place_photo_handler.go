package handlers

import (
	"context"
	"net/http"
)

// PhotoFetcher defines the photo operations used by the handler.
type PhotoFetcher interface {
	Fetch(ctx context.Context, photoRef string) ([]byte, error)
}

// PlacePhotoHandler proxies provider photos to clients
type PlacePhotoHandler struct {
	photos PhotoFetcher
}

// NewPlacePhotoHandler creates a new place photo handler
func NewPlacePhotoHandler(photos PhotoFetcher) *PlacePhotoHandler {
	return &PlacePhotoHandler{photos: photos}
}

// GetPhoto handles GET /v1/places/photos/{photoRef...}
func (h *PlacePhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photoRef := r.PathValue("photoRef")
	if photoRef == "" {
		respondWithError(w, http.StatusBadRequest, "photo reference is required")
		return
	}

	data, err := h.photos.Fetch(r.Context(), photoRef)
	if err != nil {
		respondWithAppError(w, err, "failed to fetch photo")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		return
	}
}
