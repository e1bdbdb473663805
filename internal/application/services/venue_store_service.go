package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
)

// VenueStoreService reconciles provider results against persisted venue
// records. Records refreshed within the freshness window are left untouched;
// everything else is merged and written in one batch.
type VenueStoreService struct {
	venues    repositories.VenueRepository
	freshness time.Duration
	now       func() time.Time
}

// NewVenueStoreService creates a store service with the given freshness
// window in days.
func NewVenueStoreService(venues repositories.VenueRepository, freshnessDays int) *VenueStoreService {
	if freshnessDays <= 0 {
		freshnessDays = 30
	}
	return &VenueStoreService{
		venues:    venues,
		freshness: time.Duration(freshnessDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// NeedsRefresh reports whether a stored record is old enough to be rewritten
// from provider data.
func NeedsRefresh(record entities.VenueRecord, now time.Time, freshness time.Duration) bool {
	return now.Sub(record.UpdatedAt) > freshness
}

// Reconcile upserts the candidate batch and returns one record per candidate
// in candidate order. Fresh existing records pass through unchanged and are
// not rewritten; stale records are merged with the candidate's data while
// keeping enrichment fields that the candidate cannot provide; unknown
// candidates become new records.
func (s *VenueStoreService) Reconcile(ctx context.Context, candidates []entities.CandidatePlace) ([]*entities.VenueRecord, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	externalIDs := make([]string, len(candidates))
	for i, candidate := range candidates {
		externalIDs[i] = candidate.ExternalID
	}

	existing, err := s.venues.FindByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("loading venues for reconcile: %w", err)
	}
	byExternalID := make(map[string]*entities.VenueRecord, len(existing))
	for _, record := range existing {
		byExternalID[record.ExternalID] = record
	}

	now := s.now()
	result := make([]*entities.VenueRecord, len(candidates))
	var toWrite []*entities.VenueRecord
	var writeSlots []int

	for i, candidate := range candidates {
		record, known := byExternalID[candidate.ExternalID]
		if known && !NeedsRefresh(*record, now, s.freshness) {
			result[i] = record
			continue
		}

		merged := mergeCandidate(record, candidate)
		result[i] = merged
		toWrite = append(toWrite, merged)
		writeSlots = append(writeSlots, i)
	}

	if len(toWrite) > 0 {
		saved, err := s.venues.SaveAll(ctx, toWrite)
		if err != nil {
			return nil, fmt.Errorf("saving reconciled venues: %w", err)
		}
		for j, slot := range writeSlots {
			if j < len(saved) {
				result[slot] = saved[j]
			}
		}
		log.Debug().
			Int("candidates", len(candidates)).
			Int("written", len(toWrite)).
			Msg("venue batch reconciled")
	}
	return result, nil
}

// mergeCandidate rewrites provider-sourced fields from the candidate while
// preserving identity and enrichment fields on the stored record. Absent
// optional candidate fields keep the stored value.
func mergeCandidate(existing *entities.VenueRecord, candidate entities.CandidatePlace) *entities.VenueRecord {
	var record entities.VenueRecord
	if existing != nil {
		record = *existing
	}

	record.ExternalID = candidate.ExternalID
	if candidate.Name != "" {
		record.Name = candidate.Name
	}
	if candidate.Address != "" {
		record.Address = candidate.Address
	}
	if candidate.Rating != nil {
		record.Rating = *candidate.Rating
	}
	if candidate.RatingCount != nil {
		record.RatingCount = *candidate.RatingCount
	}
	if candidate.Location != nil {
		record.Location = *candidate.Location
	}
	if candidate.OpenNow != nil {
		record.OpenNow = candidate.OpenNow
	}
	if len(candidate.PhotoRefs) > 0 {
		record.Photos = candidate.PhotoRefs
	}
	record.Deleted = false
	return &record
}
