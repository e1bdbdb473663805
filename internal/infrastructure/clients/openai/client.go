package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	"github.com/gatherly/venuescout/backend/pkg/config"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the OpenAI-backed relevance filter. All callers treat it
// as best-effort: a failure here degrades output quality, never a search.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: limiter,
	}, nil
}

var _ providers.RelevanceFilterProvider = (*Client)(nil)

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// ScoreAndReason asks the model which candidate places fit the meeting
// context and why. Places the model leaves out get no reason.
func (c *Client) ScoreAndReason(ctx context.Context, candidates []entities.CandidatePlace, contextText string) (map[string]providers.RelevanceVerdict, error) {
	if len(candidates) == 0 {
		return map[string]providers.RelevanceVerdict{}, nil
	}

	text, err := c.complete(ctx, relevanceSystemPrompt, buildRelevanceUserPrompt(candidates, contextText), 800)
	if err != nil {
		return nil, err
	}

	parsed, err := parseRelevancePayload([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse relevance response: %w", err)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		known[candidate.ExternalID] = struct{}{}
	}

	verdicts := make(map[string]providers.RelevanceVerdict, len(parsed.Places))
	for _, place := range parsed.Places {
		if _, ok := known[place.ID]; !ok {
			continue
		}
		reason := strings.TrimSpace(place.Reason)
		if reason == "" {
			continue
		}
		verdicts[place.ID] = providers.RelevanceVerdict{Reason: reason}
	}
	return verdicts, nil
}

// Summarize produces a short narrative summary per venue for detail-level
// augmentation of a final result set.
func (c *Client) Summarize(ctx context.Context, records []*entities.VenueRecord) (map[string]string, error) {
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	text, err := c.complete(ctx, summarySystemPrompt, buildSummaryUserPrompt(records), 600)
	if err != nil {
		return nil, err
	}

	parsed, err := parseSummaryPayload([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}

	summaries := make(map[string]string, len(parsed.Places))
	for _, place := range parsed.Places {
		summary := strings.TrimSpace(place.Summary)
		if place.ID == "" || summary == "" {
			continue
		}
		summaries[place.ID] = summary
	}
	return summaries, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordOpenAIMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
		recordOpenAIRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":       0.2,
		"max_output_tokens": maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordOpenAIMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", apperrors.NewProviderAuthError("openai request")
		}
		return "", fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing output text"))
		return "", errors.New("openai response missing output text")
	}

	recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return stripCodeFences(text), nil
}

// stripCodeFences cleans Markdown code blocks the model sometimes wraps
// JSON output in.
func stripCodeFences(text string) string {
	cleaned := text
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type openAIMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var openaiMetricsInit = false
var openaiMetrics openAIMetrics

func ensureOpenAIMetrics() {
	if openaiMetricsInit {
		return
	}
	meter := otel.Meter("github.com/gatherly/venuescout/backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.openai.rate_limit.wait",
		metric.WithDescription("Time spent waiting for OpenAI rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	openaiMetrics = openAIMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	openaiMetricsInit = true
}

func recordOpenAIMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureOpenAIMetrics()
	if !openaiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	openaiMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	openaiMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		openaiMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordOpenAIRateLimitWait(ctx context.Context, model string, waited time.Duration) {
	ensureOpenAIMetrics()
	if !openaiMetricsInit {
		return
	}
	openaiMetrics.rateLimitWait.Record(ctx, float64(waited.Milliseconds()), metric.WithAttributes(
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	))
}
