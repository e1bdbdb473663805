package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

type fakePlacesProvider struct {
	mu        sync.Mutex
	byQuery   map[string][]entities.CandidatePlace
	failures  map[string]error
	callCount int
	queries   []string
}

func newFakePlacesProvider() *fakePlacesProvider {
	return &fakePlacesProvider{
		byQuery:  make(map[string][]entities.CandidatePlace),
		failures: make(map[string]error),
	}
}

func (f *fakePlacesProvider) TextSearch(ctx context.Context, query string, maxResults int, bias *providers.LocationBias) ([]entities.CandidatePlace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.queries = append(f.queries, query)
	if err, ok := f.failures[query]; ok {
		return nil, err
	}
	return f.byQuery[query], nil
}

func (f *fakePlacesProvider) FetchPhoto(ctx context.Context, photoRef string) ([]byte, error) {
	return []byte("jpeg-bytes"), nil
}

func (f *fakePlacesProvider) GetDetails(ctx context.Context, externalID string) (*entities.PlaceDetails, error) {
	return &entities.PlaceDetails{ExternalID: externalID, Address: "detail address"}, nil
}

func (f *fakePlacesProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

func place(id, name string, rating float64, types ...string) entities.CandidatePlace {
	return entities.CandidatePlace{
		ExternalID: id,
		Name:       name,
		Address:    name + " street",
		Rating:     &rating,
		Types:      types,
	}
}

func candidate(keyword string, weight float64, matchTerms ...string) entities.KeywordCandidate {
	return entities.KeywordCandidate{
		Keyword:    keyword,
		Weight:     weight,
		MatchTerms: matchTerms,
		Type:       entities.KeywordTypeFood,
	}
}

func TestAllocateQuota_ProportionalSplit(t *testing.T) {
	// Weights 2:1 over a quota of 10.
	got := AllocateQuota([]float64{2, 1}, 10)
	assert.Equal(t, []int{7, 3}, got)
}

func TestAllocateQuota_SumsToTotal(t *testing.T) {
	cases := [][]float64{
		{1, 1, 1},
		{0.5, 0.3, 0.2},
		{5},
		{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
		{3, 2, 2, 1},
	}
	for _, weights := range cases {
		got := AllocateQuota(weights, 10)
		sum := 0
		for _, n := range got {
			sum += n
		}
		assert.Equal(t, 10, sum, "weights %v", weights)
	}
}

func TestAllocateQuota_RemainderFavorsLargerWeights(t *testing.T) {
	got := AllocateQuota([]float64{3, 3, 1}, 8)
	// Floors are 3,3,1; remainder 1 goes to the first of the largest weights.
	assert.Equal(t, []int{4, 3, 1}, got)
}

func TestAllocateQuota_ZeroWeightsSplitEvenly(t *testing.T) {
	got := AllocateQuota([]float64{0, 0, 0}, 10)
	assert.Equal(t, []int{4, 3, 3}, got)
}

func TestAllocateQuota_Empty(t *testing.T) {
	assert.Empty(t, AllocateQuota(nil, 10))
	assert.Equal(t, []int{0, 0}, AllocateQuota([]float64{1, 2}, 0))
}

func TestFilterByMatchTerms(t *testing.T) {
	places := []entities.CandidatePlace{
		place("p1", "Seoul Pasta House", 4.5, "italian_restaurant"),
		place("p2", "Han River Cafe", 4.0, "cafe"),
		place("p3", "Gwangjang Market", 4.2, "market"),
	}

	matched := filterByMatchTerms(places, candidate("pasta seoul", 1.0, "pasta house"))
	require.Len(t, matched, 1)
	assert.Equal(t, "p1", matched[0].ExternalID)

	// Type tags match too.
	matched = filterByMatchTerms(places, candidate("coffee", 1.0, "cafe"))
	assert.Len(t, matched, 1)

	// No match terms means no matches.
	assert.Empty(t, filterByMatchTerms(places, candidate("anything", 1.0)))
}

func TestSearch_WeightedAllocationScenario(t *testing.T) {
	// Two candidates with weights 2 and 1 over quota 10: A gets 7, B gets 3.
	provider := newFakePlacesProvider()
	for i := 0; i < 10; i++ {
		provider.byQuery["korean bbq"] = append(provider.byQuery["korean bbq"],
			place(string(rune('a'+i)), "BBQ Spot", 4.0+float64(i)*0.05, "korean_restaurant"))
	}
	for i := 0; i < 10; i++ {
		provider.byQuery["board game cafe"] = append(provider.byQuery["board game cafe"],
			place(string(rune('n'+i)), "Game Cafe", 4.0, "cafe"))
	}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords: []entities.KeywordCandidate{
			candidate("korean bbq", 2.0, "bbq"),
			candidate("board game cafe", 1.0, "cafe"),
		},
		FallbackKeyword: "restaurants near city hall",
	}

	result, err := svc.Search(context.Background(), plan, 10, 5)
	require.NoError(t, err)
	assert.Len(t, result.Selected, 10)

	byWeight := map[float64]int{}
	for _, p := range result.Selected {
		byWeight[result.WeightByExternalID[p.ExternalID]]++
	}
	assert.Equal(t, 7, byWeight[2.0])
	assert.Equal(t, 3, byWeight[1.0])
}

func TestSearch_DeduplicatesAcrossCandidates(t *testing.T) {
	shared := place("shared", "Common Spot", 4.8, "cafe", "korean_restaurant")
	provider := newFakePlacesProvider()
	provider.byQuery["kw a"] = []entities.CandidatePlace{shared, place("a1", "A One", 4.0, "korean_restaurant")}
	provider.byQuery["kw b"] = []entities.CandidatePlace{shared, place("b1", "B One", 4.1, "cafe")}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords: []entities.KeywordCandidate{
			candidate("kw a", 1.0, "korean_restaurant", "cafe"),
			candidate("kw b", 1.0, "cafe"),
		},
		FallbackKeyword: "anywhere",
	}

	result, err := svc.Search(context.Background(), plan, 10, 5)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, p := range result.Selected {
		seen[p.ExternalID]++
	}
	for _, p := range result.Overflow {
		seen[p.ExternalID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "place %s appeared %d times", id, n)
	}
}

func TestSearch_SelectionWeightOverridesOverflowClaim(t *testing.T) {
	// "Pasta Wine Bar" overflows out of the first candidate's allocation,
	// then the second candidate selects it. The weight used for ranking is
	// the selecting candidate's, not the earlier overflow claimant's.
	shared := place("shared", "Pasta Wine Bar", 4.0, "restaurant")
	provider := newFakePlacesProvider()
	provider.byQuery["pasta"] = []entities.CandidatePlace{
		place("p1", "Pasta One", 4.8, "restaurant"),
		place("p2", "Pasta Two", 4.7, "restaurant"),
		place("p3", "Pasta Three", 4.6, "restaurant"),
		shared,
	}
	provider.byQuery["wine"] = []entities.CandidatePlace{shared}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords: []entities.KeywordCandidate{
			candidate("pasta", 3.0, "pasta"),
			candidate("wine", 1.0, "wine"),
		},
		FallbackKeyword: "anywhere",
	}

	result, err := svc.Search(context.Background(), plan, 4, 5)
	require.NoError(t, err)

	selectedIDs := make([]string, 0, len(result.Selected))
	for _, p := range result.Selected {
		selectedIDs = append(selectedIDs, p.ExternalID)
	}
	assert.Contains(t, selectedIDs, "shared")
	for _, p := range result.Overflow {
		assert.NotEqual(t, "shared", p.ExternalID)
	}
	assert.InDelta(t, 1.0, result.WeightByExternalID["shared"], 1e-9)
}

func TestSearch_CandidatesSortedByRating(t *testing.T) {
	provider := newFakePlacesProvider()
	provider.byQuery["ramen"] = []entities.CandidatePlace{
		place("low", "Ramen Low", 3.0, "ramen_restaurant"),
		place("high", "Ramen High", 4.9, "ramen_restaurant"),
		place("mid", "Ramen Mid", 4.0, "ramen_restaurant"),
	}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords:        []entities.KeywordCandidate{candidate("ramen", 1.0, "ramen")},
		FallbackKeyword: "anywhere",
	}

	result, err := svc.Search(context.Background(), plan, 2, 5)
	require.NoError(t, err)
	require.Len(t, result.Selected, 2)
	assert.Equal(t, "high", result.Selected[0].ExternalID)
	assert.Equal(t, "mid", result.Selected[1].ExternalID)
	require.Len(t, result.Overflow, 1)
	assert.Equal(t, "low", result.Overflow[0].ExternalID)
}

func TestSearch_FailedCandidateIsDropped(t *testing.T) {
	provider := newFakePlacesProvider()
	provider.byQuery["good"] = []entities.CandidatePlace{place("g1", "Good Spot", 4.5, "cafe")}
	provider.failures["bad"] = errors.New("status 503")

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords: []entities.KeywordCandidate{
			candidate("good", 1.0, "cafe"),
			candidate("bad", 2.0, "bar"),
		},
		FallbackKeyword: "anywhere",
	}

	result, err := svc.Search(context.Background(), plan, 10, 5)
	require.NoError(t, err)
	require.Len(t, result.Selected, 1)
	assert.Equal(t, "g1", result.Selected[0].ExternalID)
	assert.Equal(t, []string{"good"}, result.KeywordsUsed)
}

func TestSearch_FallbackWhenNothingMatches(t *testing.T) {
	provider := newFakePlacesProvider()
	// The candidate returns places, but none match its terms.
	provider.byQuery["vegan"] = []entities.CandidatePlace{place("x1", "Steak House", 4.5, "steak_house")}
	provider.byQuery["restaurants near city hall"] = []entities.CandidatePlace{
		place("f1", "Fallback One", 4.0),
		place("f2", "Fallback Two", 3.9),
	}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords:        []entities.KeywordCandidate{candidate("vegan", 1.0, "vegan")},
		FallbackKeyword: "restaurants near city hall",
	}

	result, err := svc.Search(context.Background(), plan, 10, 5)
	require.NoError(t, err)
	require.Len(t, result.Selected, 2)
	assert.Equal(t, []string{"restaurants near city hall"}, result.KeywordsUsed)
	for _, p := range result.Selected {
		assert.Equal(t, fallbackWeight, result.WeightByExternalID[p.ExternalID])
	}
}

func TestSearch_FallbackTruncatedToQuota(t *testing.T) {
	provider := newFakePlacesProvider()
	for i := 0; i < 15; i++ {
		provider.byQuery["anywhere"] = append(provider.byQuery["anywhere"],
			place(string(rune('a'+i)), "Spot", 4.0))
	}

	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{FallbackKeyword: "anywhere"}

	result, err := svc.Search(context.Background(), plan, 10, 5)
	require.NoError(t, err)
	assert.Len(t, result.Selected, 10)
}

func TestSearch_BlankFallbackRejected(t *testing.T) {
	svc := NewKeywordFanoutService(newFakePlacesProvider(), 20, 3000)
	_, err := svc.Search(context.Background(), entities.SearchPlan{FallbackKeyword: "   "}, 10, 5)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearch_CancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := newFakePlacesProvider()
	svc := NewKeywordFanoutService(provider, 20, 3000)
	plan := entities.SearchPlan{
		Keywords:        []entities.KeywordCandidate{candidate("anything", 1.0, "anything")},
		FallbackKeyword: "anywhere",
	}

	_, err := svc.Search(ctx, plan, 10, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
