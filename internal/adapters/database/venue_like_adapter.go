package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// VenueLikeAdapter implements VenueLikeRepository on PostgreSQL. Likes are
// unique per (meeting_id, venue_id, user_id).
type VenueLikeAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVenueLikeAdapter creates a new venue like adapter
func NewVenueLikeAdapter(client *postgres.Client) repositories.VenueLikeRepository {
	return &VenueLikeAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Insert records a like. Returns false when the like already existed.
func (a *VenueLikeAdapter) Insert(ctx context.Context, meetingID, venueID, userID string) (bool, error) {
	query, args, err := a.db.Insert("venue_likes").
		Rows(goqu.Record{
			"meeting_id": meetingID,
			"venue_id":   venueID,
			"user_id":    userID,
			"created_at": time.Now().UTC(),
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build like insert", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternalError("failed to insert like", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to read like insert result", err)
	}
	return inserted > 0, nil
}

// Delete removes a like.
func (a *VenueLikeAdapter) Delete(ctx context.Context, meetingID, venueID, userID string) error {
	query, args, err := a.db.Delete("venue_likes").
		Where(goqu.Ex{
			"meeting_id": meetingID,
			"venue_id":   venueID,
			"user_id":    userID,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build like delete", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete like", err)
	}
	return nil
}

// CountAndViewerState aggregates like counts and the viewer's own like flag
// per venue in one query.
func (a *VenueLikeAdapter) CountAndViewerState(ctx context.Context, meetingID string, venueIDs []string, viewerID string) (map[string]entities.LikeState, error) {
	states := make(map[string]entities.LikeState, len(venueIDs))
	if len(venueIDs) == 0 {
		return states, nil
	}

	query, args, err := a.db.Select(
		goqu.C("venue_id"),
		goqu.COUNT(goqu.Star()).As("like_count"),
		goqu.L("BOOL_OR(user_id = ?)", viewerID).As("viewer_liked"),
	).
		From("venue_likes").
		Where(goqu.Ex{
			"meeting_id": meetingID,
			"venue_id":   venueIDs,
		}).
		GroupBy("venue_id").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build like state query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query like states", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			venueID     string
			count       int
			viewerLiked bool
		)
		if err := rows.Scan(&venueID, &count, &viewerLiked); err != nil {
			return nil, apperrors.NewInternalError("failed to scan like state", err)
		}
		states[venueID] = entities.LikeState{
			Count: count,
			Liked: viewerID != "" && viewerLiked,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate like states", err)
	}
	return states, nil
}
