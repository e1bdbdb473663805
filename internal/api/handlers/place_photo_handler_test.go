package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

type stubPhotoFetcher struct {
	data []byte
	err  error
}

func (s *stubPhotoFetcher) Fetch(ctx context.Context, photoRef string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func photoRequest(ref string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/places/photos/"+ref, nil)
	req.SetPathValue("photoRef", ref)
	return req
}

func TestGetPhoto_OK(t *testing.T) {
	handler := NewPlacePhotoHandler(&stubPhotoFetcher{data: []byte("jpeg-bytes")})

	rec := httptest.NewRecorder()
	handler.GetPhoto(rec, photoRequest("places/p1/photos/ref-a"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=86400")
}

func TestGetPhoto_MissingRef(t *testing.T) {
	handler := NewPlacePhotoHandler(&stubPhotoFetcher{})

	rec := httptest.NewRecorder()
	handler.GetPhoto(rec, photoRequest(""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPhoto_InvalidRef(t *testing.T) {
	handler := NewPlacePhotoHandler(&stubPhotoFetcher{
		err: apperrors.NewValidationError("photo reference must start with places/"),
	})

	rec := httptest.NewRecorder()
	handler.GetPhoto(rec, photoRequest("not-a-ref"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPhoto_UpstreamNotFound(t *testing.T) {
	handler := NewPlacePhotoHandler(&stubPhotoFetcher{
		err: apperrors.NewProviderNotFoundError("places photo fetch", "places/p1/photos/gone"),
	})

	rec := httptest.NewRecorder()
	handler.GetPhoto(rec, photoRequest("places/p1/photos/gone"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
