package repositories

import (
	"context"
	"time"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// VenueRepository defines the interface for venue record persistence.
// SaveAll is the only mutation point for venue records; it runs as a single
// transaction so a failure leaves no partial batch behind.
type VenueRepository interface {
	// FindByExternalIDs retrieves venues by provider place ids in one batch
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*entities.VenueRecord, error)

	// SaveAll inserts or updates the given records transactionally and
	// returns them with ids and timestamps assigned
	SaveAll(ctx context.Context, records []*entities.VenueRecord) ([]*entities.VenueRecord, error)

	// DeleteStale removes venues whose freshness watermark is older than
	// cutoff, returning the number of rows deleted
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}
