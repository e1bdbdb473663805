package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// VenueAdapter implements VenueRepository on PostgreSQL.
type VenueAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVenueAdapter creates a new venue adapter
func NewVenueAdapter(client *postgres.Client) repositories.VenueRepository {
	return &VenueAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var venueColumns = []interface{}{
	"id",
	"external_id",
	"name",
	"address",
	"latitude",
	"longitude",
	"rating",
	"rating_count",
	"open_now",
	"photos",
	"link",
	"summary",
	"recommend_reason",
	"top_review_rating",
	"top_review_text",
	"address_descriptor",
	"is_deleted",
	"created_at",
	"updated_at",
}

// FindByExternalIDs retrieves venues by provider place ids in one batch.
func (a *VenueAdapter) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*entities.VenueRecord, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}

	query, args, err := a.db.Select(venueColumns...).
		From("venues").
		Where(goqu.Ex{"external_id": externalIDs}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build venue lookup query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query venues", err)
	}
	defer rows.Close()

	var records []*entities.VenueRecord
	for rows.Next() {
		record, err := scanVenue(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan venue", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate venues", err)
	}
	return records, nil
}

// SaveAll inserts or updates the given records in a single transaction. A
// failure rolls the whole batch back.
func (a *VenueAdapter) SaveAll(ctx context.Context, records []*entities.VenueRecord) ([]*entities.VenueRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin venue batch transaction", err)
	}

	now := time.Now().UTC()
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		record.UpdatedAt = now

		query, args, err := a.db.Insert("venues").
			Rows(venueRow(record)).
			OnConflict(goqu.DoUpdate("external_id", venueUpdateRow(record))).
			ToSQL()
		if err != nil {
			tx.Rollback()
			return nil, apperrors.NewInternalError("failed to build venue upsert", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return nil, apperrors.NewInternalError("failed to upsert venue", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit venue batch", err)
	}
	return records, nil
}

// DeleteStale removes venues not refreshed since cutoff.
func (a *VenueAdapter) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := a.db.Delete("venues").
		Where(goqu.C("updated_at").Lt(cutoff)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build stale venue delete", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete stale venues", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count deleted venues", err)
	}
	return deleted, nil
}

func venueRow(record *entities.VenueRecord) goqu.Record {
	return goqu.Record{
		"id":                 record.ID,
		"external_id":        record.ExternalID,
		"name":               record.Name,
		"address":            record.Address,
		"latitude":           record.Location.Latitude,
		"longitude":          record.Location.Longitude,
		"rating":             record.Rating,
		"rating_count":       record.RatingCount,
		"open_now":           record.OpenNow,
		"photos":             joinPhotos(record.Photos),
		"link":               record.Link,
		"summary":            record.Summary,
		"recommend_reason":   record.RecommendReason,
		"top_review_rating":  record.TopReviewRating,
		"top_review_text":    record.TopReviewText,
		"address_descriptor": record.AddressDescriptor,
		"is_deleted":         record.Deleted,
		"created_at":         record.CreatedAt,
		"updated_at":         record.UpdatedAt,
	}
}

// venueUpdateRow deliberately leaves id, external_id and created_at alone:
// the external id is immutable once set.
func venueUpdateRow(record *entities.VenueRecord) goqu.Record {
	return goqu.Record{
		"name":               record.Name,
		"address":            record.Address,
		"latitude":           record.Location.Latitude,
		"longitude":          record.Location.Longitude,
		"rating":             record.Rating,
		"rating_count":       record.RatingCount,
		"open_now":           record.OpenNow,
		"photos":             joinPhotos(record.Photos),
		"link":               record.Link,
		"summary":            record.Summary,
		"recommend_reason":   record.RecommendReason,
		"top_review_rating":  record.TopReviewRating,
		"top_review_text":    record.TopReviewText,
		"address_descriptor": record.AddressDescriptor,
		"is_deleted":         record.Deleted,
		"updated_at":         record.UpdatedAt,
	}
}

func scanVenue(rows *sql.Rows) (*entities.VenueRecord, error) {
	var (
		record                       entities.VenueRecord
		openNow                      sql.NullBool
		photos, link, summary        sql.NullString
		reason, reviewText, addrDesc sql.NullString
		reviewRating                 sql.NullInt64
	)

	err := rows.Scan(
		&record.ID,
		&record.ExternalID,
		&record.Name,
		&record.Address,
		&record.Location.Latitude,
		&record.Location.Longitude,
		&record.Rating,
		&record.RatingCount,
		&openNow,
		&photos,
		&link,
		&summary,
		&reason,
		&reviewRating,
		&reviewText,
		&addrDesc,
		&record.Deleted,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if openNow.Valid {
		value := openNow.Bool
		record.OpenNow = &value
	}
	record.Photos = splitPhotos(photos.String)
	record.Link = link.String
	record.Summary = summary.String
	record.RecommendReason = reason.String
	record.TopReviewRating = int(reviewRating.Int64)
	record.TopReviewText = reviewText.String
	record.AddressDescriptor = addrDesc.String
	return &record, nil
}

func joinPhotos(photos []string) string {
	return strings.Join(photos, ",")
}

func splitPhotos(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
