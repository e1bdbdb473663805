package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	"github.com/gatherly/venuescout/backend/internal/domain/repositories"
)

const searchCacheKeyFormat = "placesearch:meeting:%s"

// PlaceSearchRequest carries everything one venue search needs. MeetingID
// keys the result cache; an empty MeetingID disables caching. ContextText is
// free-form meeting context handed to the relevance filter.
type PlaceSearchRequest struct {
	MeetingID   string
	UserID      string
	Plan        entities.SearchPlan
	ContextText string
}

// PlaceSearchService orchestrates a full venue search: cache lookup, keyword
// fan-out, relevance filtering, persistence reconcile, like aggregation,
// ranking, detail augmentation and cache write-back.
type PlaceSearchService struct {
	fanout    *KeywordFanoutService
	store     *VenueStoreService
	ranking   *SearchRankingService
	cache     providers.CacheProvider
	likes     repositories.VenueLikeRepository
	relevance providers.RelevanceFilterProvider
	places    providers.PlacesProvider

	proxyBaseURL   string
	totalQuota     int
	fallbackBuffer int
	cacheTTL       int
}

// NewPlaceSearchService wires the orchestrator. relevance may be nil, in
// which case the relevance filter step is skipped.
func NewPlaceSearchService(
	fanout *KeywordFanoutService,
	store *VenueStoreService,
	ranking *SearchRankingService,
	cache providers.CacheProvider,
	likes repositories.VenueLikeRepository,
	relevance providers.RelevanceFilterProvider,
	places providers.PlacesProvider,
	proxyBaseURL string,
	totalQuota, fallbackBuffer, cacheTTLSeconds int,
) *PlaceSearchService {
	if totalQuota <= 0 {
		totalQuota = 10
	}
	if fallbackBuffer < 0 {
		fallbackBuffer = 5
	}
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 3600
	}
	return &PlaceSearchService{
		fanout:         fanout,
		store:          store,
		ranking:        ranking,
		cache:          cache,
		likes:          likes,
		relevance:      relevance,
		places:         places,
		proxyBaseURL:   proxyBaseURL,
		totalQuota:     totalQuota,
		fallbackBuffer: fallbackBuffer,
		cacheTTL:       cacheTTLSeconds,
	}
}

// Search returns the ranked venue list for the request. A cached result for
// the meeting is reused wholesale with only the viewer-relative like fields
// recomputed; otherwise the full pipeline runs and the result (minus like
// fields) is cached under the meeting id.
func (s *PlaceSearchService) Search(ctx context.Context, req PlaceSearchRequest) (*entities.SearchResult, error) {
	if cached := s.readCache(ctx, req.MeetingID); cached != nil {
		s.applyLikes(ctx, req.MeetingID, req.UserID, cached.Items)
		return cached, nil
	}

	fanned, err := s.fanout.Search(ctx, req.Plan, s.totalQuota, s.fallbackBuffer)
	if err != nil {
		return nil, err
	}

	candidates := append([]entities.CandidatePlace{}, fanned.Selected...)
	candidates = append(candidates, fanned.Overflow...)
	if len(candidates) == 0 {
		return &entities.SearchResult{Items: []entities.RankedItem{}}, nil
	}

	reasons := s.filterByRelevance(ctx, &candidates, req.ContextText)

	// The buffer exists so the relevance filter can reject a few candidates
	// without shrinking the final page; cap the persisted batch.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RatingOrZero() > candidates[j].RatingOrZero()
	})
	if max := s.totalQuota + s.fallbackBuffer; len(candidates) > max {
		candidates = candidates[:max]
	}

	records, err := s.store.Reconcile(ctx, candidates)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if reason, ok := reasons[records[i].ExternalID]; ok && reason != "" {
			records[i].RecommendReason = reason
		}
	}

	scored := s.ranking.Rank(records, fanned.WeightByExternalID)
	if len(scored) > s.totalQuota {
		scored = scored[:s.totalQuota]
	}
	s.applySummaries(ctx, scored)

	items := make([]entities.RankedItem, 0, len(scored))
	for _, sv := range scored {
		item, ok := s.toItem(ctx, *sv.Record)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	result := &entities.SearchResult{Items: items}
	s.writeCache(ctx, req.MeetingID, result)
	s.applyLikes(ctx, req.MeetingID, req.UserID, result.Items)
	return result, nil
}

// InvalidateCache drops the cached result for a meeting.
func (s *PlaceSearchService) InvalidateCache(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return nil
	}
	return s.cache.Delete(ctx, fmt.Sprintf(searchCacheKeyFormat, meetingID))
}

func (s *PlaceSearchService) readCache(ctx context.Context, meetingID string) *entities.SearchResult {
	if meetingID == "" || s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, fmt.Sprintf(searchCacheKeyFormat, meetingID))
	if err != nil || raw == nil {
		return nil
	}
	var result entities.SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Warn().Str("meeting_id", meetingID).Err(err).Msg("discarding unreadable cached search result")
		return nil
	}
	return &result
}

func (s *PlaceSearchService) writeCache(ctx context.Context, meetingID string, result *entities.SearchResult) {
	if meetingID == "" || s.cache == nil {
		return
	}
	// Like fields are viewer-relative and must not be cached.
	cacheable := entities.SearchResult{Items: make([]entities.RankedItem, len(result.Items))}
	copy(cacheable.Items, result.Items)
	for i := range cacheable.Items {
		cacheable.Items[i].LikeCount = 0
		cacheable.Items[i].IsLiked = false
	}

	raw, err := json.Marshal(cacheable)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(searchCacheKeyFormat, meetingID), raw, s.cacheTTL); err != nil {
		log.Warn().Str("meeting_id", meetingID).Err(err).Msg("failed to cache search result")
	}
}

// filterByRelevance drops candidates the relevance provider rejects and
// returns per-place recommendation reasons. Any provider failure keeps the
// candidate set as-is.
func (s *PlaceSearchService) filterByRelevance(ctx context.Context, candidates *[]entities.CandidatePlace, contextText string) map[string]string {
	if s.relevance == nil || len(*candidates) == 0 {
		return nil
	}

	verdicts, err := s.relevance.ScoreAndReason(ctx, *candidates, contextText)
	if err != nil {
		log.Warn().Err(err).Msg("relevance filter unavailable, keeping all candidates")
		return nil
	}
	if len(verdicts) == 0 {
		return nil
	}

	kept := make([]entities.CandidatePlace, 0, len(*candidates))
	reasons := make(map[string]string, len(verdicts))
	for _, candidate := range *candidates {
		verdict, ok := verdicts[candidate.ExternalID]
		if !ok {
			continue
		}
		kept = append(kept, candidate)
		reasons[candidate.ExternalID] = verdict.Reason
	}
	if len(kept) == 0 {
		// A filter that rejects everything is treated as noise.
		return nil
	}
	*candidates = kept
	return reasons
}

// applySummaries asks the relevance provider for narrative summaries of the
// final result set. Any failure leaves the stored summaries in place.
func (s *PlaceSearchService) applySummaries(ctx context.Context, scored []ScoredVenue) {
	if s.relevance == nil || len(scored) == 0 {
		return
	}
	records := make([]*entities.VenueRecord, len(scored))
	for i, sv := range scored {
		records[i] = sv.Record
	}
	summaries, err := s.relevance.Summarize(ctx, records)
	if err != nil {
		log.Warn().Err(err).Msg("detail augmentation unavailable, keeping stored summaries")
		return
	}
	for _, record := range records {
		if summary, ok := summaries[record.ExternalID]; ok && summary != "" {
			record.Summary = summary
		}
	}
}

func (s *PlaceSearchService) applyLikes(ctx context.Context, meetingID, userID string, items []entities.RankedItem) {
	if s.likes == nil || meetingID == "" || len(items) == 0 {
		return
	}
	venueIDs := make([]string, len(items))
	for i, item := range items {
		venueIDs[i] = item.VenueID
	}
	states, err := s.likes.CountAndViewerState(ctx, meetingID, venueIDs, userID)
	if err != nil {
		log.Warn().Str("meeting_id", meetingID).Err(err).Msg("failed to load like states")
		return
	}
	for i := range items {
		if state, ok := states[items[i].VenueID]; ok {
			items[i].LikeCount = state.Count
			items[i].IsLiked = state.Liked
		}
	}
}

// toItem maps one stored record to a result item. Records with no usable
// identity or name are dropped rather than failing the whole search.
func (s *PlaceSearchService) toItem(ctx context.Context, record entities.VenueRecord) (entities.RankedItem, bool) {
	if record.ID == "" || record.ExternalID == "" || record.Name == "" {
		log.Debug().Str("external_id", record.ExternalID).Msg("dropping incomplete venue record from result")
		return entities.RankedItem{}, false
	}

	if record.Address == "" && s.places != nil {
		if details, err := s.places.GetDetails(ctx, record.ExternalID); err == nil {
			record.Address = details.Address
			if record.Rating == 0 && details.Rating != nil {
				record.Rating = *details.Rating
			}
		} else {
			log.Warn().Str("external_id", record.ExternalID).Err(err).Msg("detail enrichment failed")
		}
	}

	photoURLs := make([]string, 0, len(record.Photos))
	for _, ref := range record.Photos {
		if url := BuildPhotoProxyURL(s.proxyBaseURL, ref); url != "" {
			photoURLs = append(photoURLs, url)
		}
	}

	// The recommendation reason, when present, takes the top-review slot;
	// the provider's highlighted review is the fallback.
	var topReview *entities.Review
	switch {
	case record.RecommendReason != "":
		topReview = &entities.Review{Rating: int(record.Rating), Text: record.RecommendReason}
	case record.TopReviewText != "":
		topReview = &entities.Review{Rating: record.TopReviewRating, Text: record.TopReviewText}
	}

	return entities.RankedItem{
		VenueID:           record.ID,
		ExternalID:        record.ExternalID,
		Name:              record.Name,
		Address:           record.Address,
		Rating:            record.Rating,
		RatingCount:       record.RatingCount,
		OpenNow:           record.OpenNow,
		PhotoURLs:         photoURLs,
		Link:              record.Link,
		Summary:           record.Summary,
		TopReview:         topReview,
		AddressDescriptor: record.AddressDescriptor,
	}, true
}
