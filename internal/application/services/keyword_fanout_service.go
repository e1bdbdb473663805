package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// fallbackWeight is the uniform weight assigned to places surfaced by the
// broad fallback query.
const fallbackWeight = 0.1

// KeywordSearchResult is the outcome of one fan-out search.
type KeywordSearchResult struct {
	Selected           []entities.CandidatePlace
	Overflow           []entities.CandidatePlace
	WeightByExternalID map[string]float64
	KeywordsUsed       []string
}

// KeywordFanoutService fans one search out over the plan's weighted keyword
// candidates, allocates the result quota proportionally across them and
// deduplicates across candidates.
type KeywordFanoutService struct {
	places          providers.PlacesProvider
	perKeywordFetch int
	biasRadius      float64
}

// NewKeywordFanoutService creates a new fan-out service. perKeywordFetch is
// how many raw results each per-candidate provider call requests.
func NewKeywordFanoutService(places providers.PlacesProvider, perKeywordFetch int, biasRadius float64) *KeywordFanoutService {
	if perKeywordFetch <= 0 {
		perKeywordFetch = 20
	}
	if biasRadius <= 0 {
		biasRadius = 3000
	}
	return &KeywordFanoutService{
		places:          places,
		perKeywordFetch: perKeywordFetch,
		biasRadius:      biasRadius,
	}
}

// Search runs the fan-out. A single candidate's provider failure drops that
// candidate; caller cancellation aborts the whole search. When no candidate
// yields a selected place the fallback keyword is queried so the search
// never comes back empty while the provider is reachable.
func (s *KeywordFanoutService) Search(ctx context.Context, plan entities.SearchPlan, totalQuota, fallbackBuffer int) (*KeywordSearchResult, error) {
	if strings.TrimSpace(plan.FallbackKeyword) == "" {
		return nil, apperrors.NewValidationError("search plan has no usable fallback keyword")
	}

	type candidateHit struct {
		candidate entities.KeywordCandidate
		places    []entities.CandidatePlace
	}

	// One slot per candidate; a nil slot means the candidate failed or was
	// cancelled and is dropped from allocation.
	hits := make([]*candidateHit, len(plan.Keywords))
	var wg sync.WaitGroup
	for i, candidate := range plan.Keywords {
		wg.Add(1)
		go func(i int, candidate entities.KeywordCandidate) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			found, err := s.textSearch(ctx, candidate.Keyword, plan.Origin)
			if err != nil {
				// Degraded, not fatal: the candidate simply contributes
				// nothing. Cancellation is handled after the wait.
				log.Warn().
					Str("keyword", candidate.Keyword).
					Err(err).
					Msg("keyword candidate search failed, dropping candidate")
				return
			}
			hits[i] = &candidateHit{candidate: candidate, places: found}
		}(i, candidate)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	live := make([]*candidateHit, 0, len(hits))
	for _, hit := range hits {
		if hit != nil {
			live = append(live, hit)
		}
	}

	weights := make([]float64, len(live))
	for i, hit := range live {
		weights[i] = hit.candidate.Weight
	}
	allocations := AllocateQuota(weights, totalQuota)

	var (
		selected     []entities.CandidatePlace
		overflow     []entities.CandidatePlace
		weightByID   = make(map[string]float64)
		selectedIDs  = make(map[string]struct{})
		overflowIDs  = make(map[string]struct{})
		keywordsUsed []string
	)

	for i, hit := range live {
		keywordsUsed = append(keywordsUsed, hit.candidate.Keyword)
		allocation := allocations[i]

		matches := filterByMatchTerms(hit.places, hit.candidate)
		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].RatingOrZero() > matches[b].RatingOrZero()
		})

		added := 0
		for _, place := range matches {
			if _, taken := selectedIDs[place.ExternalID]; taken {
				continue
			}
			if added < allocation && len(selected) < totalQuota {
				selected = append(selected, place)
				weightByID[place.ExternalID] = hit.candidate.Weight
				selectedIDs[place.ExternalID] = struct{}{}
				added++
			} else if len(overflow) < fallbackBuffer {
				if _, seen := overflowIDs[place.ExternalID]; seen {
					continue
				}
				overflowIDs[place.ExternalID] = struct{}{}
				// Overflow keeps the weight of its first claimant.
				if _, ok := weightByID[place.ExternalID]; !ok {
					weightByID[place.ExternalID] = hit.candidate.Weight
				}
				overflow = append(overflow, place)
			}
		}
	}

	if len(selected) == 0 {
		return s.fallbackSearch(ctx, plan, totalQuota)
	}

	// A later candidate may have promoted an overflow id into selected.
	finalOverflow := make([]entities.CandidatePlace, 0, len(overflow))
	for _, place := range overflow {
		if _, taken := selectedIDs[place.ExternalID]; taken {
			continue
		}
		finalOverflow = append(finalOverflow, place)
	}

	return &KeywordSearchResult{
		Selected:           selected,
		Overflow:           finalOverflow,
		WeightByExternalID: weightByID,
		KeywordsUsed:       keywordsUsed,
	}, nil
}

func (s *KeywordFanoutService) fallbackSearch(ctx context.Context, plan entities.SearchPlan, totalQuota int) (*KeywordSearchResult, error) {
	found, err := s.textSearch(ctx, plan.FallbackKeyword, plan.Origin)
	if err != nil {
		return nil, err
	}
	if len(found) > totalQuota {
		found = found[:totalQuota]
	}

	weights := make(map[string]float64, len(found))
	for _, place := range found {
		weights[place.ExternalID] = fallbackWeight
	}
	return &KeywordSearchResult{
		Selected:           found,
		WeightByExternalID: weights,
		KeywordsUsed:       []string{plan.FallbackKeyword},
	}, nil
}

func (s *KeywordFanoutService) textSearch(ctx context.Context, keyword string, origin *entities.Location) ([]entities.CandidatePlace, error) {
	query := strings.TrimSpace(keyword)
	if query == "" {
		return nil, apperrors.NewValidationError("search keyword is blank")
	}

	var bias *providers.LocationBias
	if origin != nil {
		bias = &providers.LocationBias{
			Center:       *origin,
			RadiusMeters: s.biasRadius,
		}
	}
	return s.places.TextSearch(ctx, query, s.perKeywordFetch, bias)
}

// AllocateQuota distributes total across candidates proportionally to their
// weights: each candidate gets floor(w_i/sum * total), then the remainder is
// handed out one unit at a time in descending weight order (ties broken by
// candidate order). All-zero weights split the total as evenly as possible
// in candidate order. The allocations always sum to total when there is at
// least one candidate.
func AllocateQuota(weights []float64, total int) []int {
	allocations := make([]int, len(weights))
	if len(weights) == 0 || total <= 0 {
		return allocations
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}

	if sum == 0 {
		base := total / len(weights)
		remainder := total % len(weights)
		for i := range allocations {
			allocations[i] = base
			if i < remainder {
				allocations[i]++
			}
		}
		return allocations
	}

	assigned := 0
	for i, w := range weights {
		allocations[i] = int(w / sum * float64(total))
		assigned += allocations[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]] > weights[order[b]]
	})

	for k := 0; k < total-assigned; k++ {
		allocations[order[k%len(order)]]++
	}
	return allocations
}

// filterByMatchTerms keeps places whose display name (lowercased, spaces
// stripped) or provider type tags contain one of the candidate's match
// terms. A candidate without match terms matches nothing.
func filterByMatchTerms(places []entities.CandidatePlace, candidate entities.KeywordCandidate) []entities.CandidatePlace {
	if len(candidate.MatchTerms) == 0 {
		return nil
	}

	terms := make([]string, 0, len(candidate.MatchTerms))
	for _, term := range candidate.MatchTerms {
		normalized := normalizeTerm(term)
		if normalized != "" {
			terms = append(terms, normalized)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	var matches []entities.CandidatePlace
	for _, place := range places {
		name := normalizeTerm(place.Name)
		types := make([]string, len(place.Types))
		for i, t := range place.Types {
			types[i] = strings.ToLower(t)
		}

		for _, term := range terms {
			if strings.Contains(name, term) || anyContains(types, term) {
				matches = append(matches, place)
				break
			}
		}
	}
	return matches
}

func normalizeTerm(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "")
}

func anyContains(values []string, term string) bool {
	for _, value := range values {
		if strings.Contains(value, term) {
			return true
		}
	}
	return false
}
