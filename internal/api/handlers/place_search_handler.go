package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatherly/venuescout/backend/internal/application/services"
	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// PlaceSearcher defines the search operations used by the handler.
type PlaceSearcher interface {
	Search(ctx context.Context, req services.PlaceSearchRequest) (*entities.SearchResult, error)
}

// PlaceSearchHandler handles venue search requests
type PlaceSearchHandler struct {
	searcher PlaceSearcher
}

// NewPlaceSearchHandler creates a new place search handler
func NewPlaceSearchHandler(searcher PlaceSearcher) *PlaceSearchHandler {
	return &PlaceSearchHandler{searcher: searcher}
}

type placeSearchRequest struct {
	MeetingID   string              `json:"meeting_id"`
	UserID      string              `json:"user_id"`
	Context     string              `json:"context"`
	Plan        entities.SearchPlan `json:"plan"`
}

// SearchPlaces handles POST /v1/places/search
func (h *PlaceSearchHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var payload placeSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.Plan.FallbackKeyword) == "" {
		respondWithError(w, http.StatusBadRequest, "plan.fallback_keyword is required")
		return
	}

	result, err := h.searcher.Search(r.Context(), services.PlaceSearchRequest{
		MeetingID:   strings.TrimSpace(payload.MeetingID),
		UserID:      strings.TrimSpace(payload.UserID),
		Plan:        payload.Plan,
		ContextText: payload.Context,
	})
	if err != nil {
		respondWithAppError(w, err, "failed to search places")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// respondWithAppError maps an application error onto an HTTP status. The
// error may arrive wrapped, so classification walks the chain.
func respondWithAppError(w http.ResponseWriter, err error, fallbackMessage string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusBadGateway, "upstream provider rejected the request")
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, fallbackMessage)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallbackMessage)
}
