package repositories

import (
	"context"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// VenueLikeRepository tracks per-meeting venue likes.
type VenueLikeRepository interface {
	// Insert records a like; returns false when the like already existed
	Insert(ctx context.Context, meetingID, venueID, userID string) (bool, error)

	// Delete removes a like
	Delete(ctx context.Context, meetingID, venueID, userID string) error

	// CountAndViewerState returns, per venue id, the like count and whether
	// viewerID has liked it. Venues with no likes are absent from the map.
	// viewerID may be empty, in which case Liked is always false.
	CountAndViewerState(ctx context.Context, meetingID string, venueIDs []string, viewerID string) (map[string]entities.LikeState, error)
}
