package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
)

// VenueCleanupService hard-deletes venue records past the retention window.
// Provider terms forbid keeping place data around indefinitely.
type VenueCleanupService struct {
	venues    repositories.VenueRepository
	retention time.Duration
	now       func() time.Time
}

func NewVenueCleanupService(venues repositories.VenueRepository, retentionDays int) *VenueCleanupService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &VenueCleanupService{
		venues:    venues,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Run deletes every record not updated within the retention window and
// returns how many rows went away.
func (s *VenueCleanupService) Run(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.venues.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("venue retention cleanup finished")
	return deleted, nil
}
