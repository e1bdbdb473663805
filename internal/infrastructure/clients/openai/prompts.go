package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
)

const relevanceSystemPrompt = `You are a venue recommendation assistant for group meetings in Korea. You are given candidate venues and the meeting context. Return ONLY valid JSON with this schema:
{
  "places": [
    {"id": string (the candidate id, unchanged), "reason": string (one short sentence in Korean explaining why this venue fits the meeting)}
  ]
}
Include only venues that genuinely fit the meeting context. Do not invent ids. Keep reasons concrete and grounded in the venue's name, type and rating.`

const summarySystemPrompt = `You are a venue recommendation assistant for group meetings in Korea. You are given venues to describe. Return ONLY valid JSON with this schema:
{
  "places": [
    {"id": string (the venue id, unchanged), "summary": string (1-2 short sentences in Korean describing the venue and nearby landmarks)}
  ]
}
Do not invent ids. Keep summaries factual and short.`

type relevancePayload struct {
	Places []struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"places"`
}

type summaryPayload struct {
	Places []struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
	} `json:"places"`
}

func buildRelevanceUserPrompt(candidates []entities.CandidatePlace, contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting context: %s\n\nCandidates:\n", contextText)
	for _, candidate := range candidates {
		fmt.Fprintf(&b, "- id: %s, name: %s, types: %s, rating: %.1f (%d reviews)\n",
			candidate.ExternalID,
			candidate.Name,
			strings.Join(candidate.Types, "/"),
			candidate.RatingOrZero(),
			intOrZero(candidate.RatingCount),
		)
	}
	return b.String()
}

func buildSummaryUserPrompt(records []*entities.VenueRecord) string {
	var b strings.Builder
	b.WriteString("Venues:\n")
	for _, record := range records {
		fmt.Fprintf(&b, "- id: %s, name: %s, address: %s\n", record.ExternalID, record.Name, record.Address)
	}
	return b.String()
}

func parseRelevancePayload(data []byte) (*relevancePayload, error) {
	var payload relevancePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse relevance payload: %w", err)
	}
	return &payload, nil
}

func parseSummaryPayload(data []byte) (*summaryPayload, error) {
	var payload summaryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse summary payload: %w", err)
	}
	return &payload, nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
