package services

import (
	"sort"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// missingWeight is the score weight used for venues whose search weight is
// unknown, for example enrichment-only entries.
const missingWeight = 0.1

// Scorer combines a venue's keyword weight and its provider rating into a
// single ranking score.
type Scorer func(weight, rating float64) float64

// DefaultScorer scales the keyword weight by the normalized rating, so equal
// weights rank by rating and equal ratings rank by weight.
func DefaultScorer(weight, rating float64) float64 {
	return weight * (rating / 5.0)
}

type ScoredVenue struct {
	Record *entities.VenueRecord
	Score  float64
}

// SearchRankingService orders reconciled venue records for presentation.
type SearchRankingService struct {
	scorer Scorer
}

func NewSearchRankingService(scorer Scorer) *SearchRankingService {
	if scorer == nil {
		scorer = DefaultScorer
	}
	return &SearchRankingService{scorer: scorer}
}

// Rank scores each record against its search weight and returns a new slice
// sorted by descending score. Records with no weight entry score with
// missingWeight. Ties keep input order.
func (s *SearchRankingService) Rank(records []*entities.VenueRecord, weightByExternalID map[string]float64) []ScoredVenue {
	if len(records) == 0 {
		return nil
	}

	scored := make([]ScoredVenue, len(records))
	for i, record := range records {
		weight, ok := weightByExternalID[record.ExternalID]
		if !ok {
			weight = missingWeight
		}
		scored[i] = ScoredVenue{
			Record: record,
			Score:  s.scorer(weight, record.Rating),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
