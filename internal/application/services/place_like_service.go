package services

import (
	"context"
	"fmt"

	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// LikeToggleResult is the post-toggle state for the acting user.
type LikeToggleResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// PlaceLikeService toggles a user's like on a venue within a meeting.
type PlaceLikeService struct {
	likes repositories.VenueLikeRepository
}

func NewPlaceLikeService(likes repositories.VenueLikeRepository) *PlaceLikeService {
	return &PlaceLikeService{likes: likes}
}

// Toggle inserts the like, and if it already existed removes it instead.
// Concurrent toggles for the same (meeting, venue, user) resolve through the
// unique row: exactly one insert wins, the other call flips to delete.
func (s *PlaceLikeService) Toggle(ctx context.Context, meetingID, venueID, userID string) (*LikeToggleResult, error) {
	if meetingID == "" || venueID == "" || userID == "" {
		return nil, apperrors.NewValidationError("meeting id, venue id and user id are required")
	}

	inserted, err := s.likes.Insert(ctx, meetingID, venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("toggling like on: %w", err)
	}
	if !inserted {
		if err := s.likes.Delete(ctx, meetingID, venueID, userID); err != nil {
			return nil, fmt.Errorf("toggling like off: %w", err)
		}
	}

	states, err := s.likes.CountAndViewerState(ctx, meetingID, []string{venueID}, userID)
	if err != nil {
		return nil, fmt.Errorf("counting likes after toggle: %w", err)
	}
	state := states[venueID]
	return &LikeToggleResult{Liked: state.Liked, LikeCount: state.Count}, nil
}
