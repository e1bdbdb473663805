package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gatherly/venuescout/backend/internal/application/services"
)

// LikeToggler defines the like operations used by the handler.
type LikeToggler interface {
	Toggle(ctx context.Context, meetingID, venueID, userID string) (*services.LikeToggleResult, error)
}

// PlaceLikeHandler handles venue like toggles
type PlaceLikeHandler struct {
	likes LikeToggler
}

// NewPlaceLikeHandler creates a new place like handler
func NewPlaceLikeHandler(likes LikeToggler) *PlaceLikeHandler {
	return &PlaceLikeHandler{likes: likes}
}

type likeToggleRequest struct {
	MeetingID string `json:"meeting_id"`
	VenueID   string `json:"venue_id"`
	UserID    string `json:"user_id"`
}

// ToggleLike handles POST /v1/places/like
func (h *PlaceLikeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var payload likeToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.likes.Toggle(
		r.Context(),
		strings.TrimSpace(payload.MeetingID),
		strings.TrimSpace(payload.VenueID),
		strings.TrimSpace(payload.UserID),
	)
	if err != nil {
		respondWithAppError(w, err, "failed to toggle like")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
