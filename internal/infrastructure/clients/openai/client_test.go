package openai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/pkg/config"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)

	client, err := NewClient(&config.OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.model)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"places":[]}`, stripCodeFences("```json\n{\"places\":[]}\n```"))
	assert.Equal(t, `{"places":[]}`, stripCodeFences("```\n{\"places\":[]}\n```"))
	assert.Equal(t, `{"places":[]}`, stripCodeFences(`{"places":[]}`))
}

func TestParseRelevancePayload(t *testing.T) {
	payload, err := parseRelevancePayload([]byte(`{
		"places": [
			{"id": "p1", "reason": "단체 모임에 적합한 넓은 공간"},
			{"id": "p2", "reason": "역에서 가까움"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, payload.Places, 2)
	assert.Equal(t, "p1", payload.Places[0].ID)

	_, err = parseRelevancePayload([]byte("not json"))
	assert.Error(t, err)
}

func TestParseSummaryPayload(t *testing.T) {
	payload, err := parseSummaryPayload([]byte(`{"places":[{"id":"p1","summary":"조용한 분위기의 카페"}]}`))
	require.NoError(t, err)
	require.Len(t, payload.Places, 1)
	assert.Equal(t, "조용한 분위기의 카페", payload.Places[0].Summary)
}

func TestBuildRelevanceUserPrompt(t *testing.T) {
	rating := 4.5
	count := 120
	prompt := buildRelevanceUserPrompt([]entities.CandidatePlace{
		{ExternalID: "p1", Name: "Mapo Grill", Types: []string{"korean_restaurant"}, Rating: &rating, RatingCount: &count},
	}, "quiet team dinner")

	assert.Contains(t, prompt, "quiet team dinner")
	assert.Contains(t, prompt, "id: p1")
	assert.Contains(t, prompt, "Mapo Grill")
	assert.Contains(t, prompt, "4.5 (120 reviews)")
}

func TestTokenBucket_WaitHonorsCancellation(t *testing.T) {
	bucket := newTokenBucketWithRate(60, 1)

	// Drain the single burst token.
	require.NoError(t, bucket.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := bucket.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScoreAndReason_EmptyCandidates(t *testing.T) {
	client, err := NewClient(&config.OpenAIConfig{APIKey: "sk-test", RateLimitRPM: -1})
	require.NoError(t, err)

	verdicts, err := client.ScoreAndReason(context.Background(), nil, "context")
	require.NoError(t, err)
	assert.Empty(t, verdicts)
}
