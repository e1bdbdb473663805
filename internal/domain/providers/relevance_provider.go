package providers

import (
	"context"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

// RelevanceVerdict is the per-place output of the relevance filter.
type RelevanceVerdict struct {
	Reason string `json:"reason"`
}

// RelevanceFilterProvider is the opaque LLM-backed scoring collaborator.
// Both methods are best-effort: callers degrade to "no enrichment" on error.
type RelevanceFilterProvider interface {
	// ScoreAndReason returns recommendation reasons keyed by external place
	// id for the candidates judged relevant to the meeting context. A place
	// absent from the map was judged not relevant.
	ScoreAndReason(ctx context.Context, candidates []entities.CandidatePlace, contextText string) (map[string]RelevanceVerdict, error)

	// Summarize returns short narrative summaries keyed by external place id
	// for detail-level augmentation of a final result set.
	Summarize(ctx context.Context, records []*entities.VenueRecord) (map[string]string, error)
}
