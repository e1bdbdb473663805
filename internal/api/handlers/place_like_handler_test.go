package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/venuescout/backend/internal/application/services"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

type stubToggler struct {
	result *services.LikeToggleResult
	err    error
}

func (s *stubToggler) Toggle(ctx context.Context, meetingID, venueID, userID string) (*services.LikeToggleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestToggleLike_OK(t *testing.T) {
	handler := NewPlaceLikeHandler(&stubToggler{
		result: &services.LikeToggleResult{Liked: true, LikeCount: 3},
	})

	body := strings.NewReader(`{"meeting_id":"m1","venue_id":"v1","user_id":"u1"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/places/like", body)
	rec := httptest.NewRecorder()
	handler.ToggleLike(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result services.LikeToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Liked)
	assert.Equal(t, 3, result.LikeCount)
}

func TestToggleLike_InvalidJSON(t *testing.T) {
	handler := NewPlaceLikeHandler(&stubToggler{})

	req := httptest.NewRequest(http.MethodPost, "/v1/places/like", strings.NewReader("nope"))
	rec := httptest.NewRecorder()
	handler.ToggleLike(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleLike_MissingIDs(t *testing.T) {
	handler := NewPlaceLikeHandler(&stubToggler{
		err: apperrors.NewValidationError("meeting id, venue id and user id are required"),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/places/like", strings.NewReader(`{"meeting_id":"m1"}`))
	rec := httptest.NewRecorder()
	handler.ToggleLike(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
