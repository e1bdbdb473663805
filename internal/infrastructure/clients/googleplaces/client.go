package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gatherly/venuescout/backend/internal/domain/entities"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	"github.com/gatherly/venuescout/backend/pkg/config"
	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
	"github.com/gatherly/venuescout/backend/pkg/retry"
)

const (
	defaultBaseURL     = "https://places.googleapis.com"
	defaultHTTPTimeout = 8 * time.Second
	photoMaxHeightPx   = 1000
	photoMaxWidthPx    = 1000
)

var textSearchFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.rating",
	"places.userRatingCount",
	"places.photos",
	"places.location",
	"places.types",
	"places.currentOpeningHours",
}, ",")

var detailsFieldMask = strings.Join([]string{
	"id",
	"displayName",
	"formattedAddress",
	"rating",
	"userRatingCount",
	"location",
	"types",
}, ",")

// Client calls the Google Places API (New). Every operation runs through the
// retry layer: 429/5xx/network failures back off and retry, 401/404 fail
// fast, caller cancellation propagates untouched.
type Client struct {
	apiKey       string
	baseURL      string
	languageCode string
	regionCode   string
	httpClient   *http.Client
	retryCfg     retry.Config
}

// NewClient creates a new Places client from explicit configuration.
func NewClient(cfg *config.PlacesConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("places api key is required")
	}
	return NewClientWithOptions(cfg, nil, retry.DefaultConfig())
}

// NewClientWithOptions allows overriding the HTTP client and retry
// configuration (used for tests).
func NewClientWithOptions(cfg *config.PlacesConfig, httpClient *http.Client, retryCfg retry.Config) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("places api key is required")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		languageCode: cfg.LanguageCode,
		regionCode:   cfg.RegionCode,
		httpClient:   httpClient,
		retryCfg:     retryCfg,
	}, nil
}

var _ providers.PlacesProvider = (*Client)(nil)

// TextSearch runs a text search and maps the response to candidate places.
func (c *Client) TextSearch(ctx context.Context, query string, maxResults int, bias *providers.LocationBias) ([]entities.CandidatePlace, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}

	body := textSearchRequest{
		TextQuery:      trimmed,
		LanguageCode:   c.languageCode,
		RegionCode:     c.regionCode,
		MaxResultCount: maxResults,
	}
	if bias != nil {
		body.LocationBias = &locationBias{
			Circle: circle{
				Center: latLng{
					Latitude:  bias.Center.Latitude,
					Longitude: bias.Center.Longitude,
				},
				Radius: bias.RadiusMeters,
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text search request: %w", err)
	}

	var decoded textSearchResponse
	err = c.call(ctx, "places text search", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/places:searchText", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", textSearchFieldMask)

		decoded = textSearchResponse{}
		return c.doJSON(req, "places text search", trimmed, &decoded)
	})
	if err != nil {
		return nil, err
	}

	places := make([]entities.CandidatePlace, 0, len(decoded.Places))
	for _, p := range decoded.Places {
		places = append(places, p.toCandidate())
	}
	return places, nil
}

// FetchPhoto fetches raw photo bytes for a photo resource name of the form
// places/{place_id}/photos/{reference}.
func (c *Client) FetchPhoto(ctx context.Context, photoRef string) ([]byte, error) {
	if !strings.HasPrefix(photoRef, "places/") {
		return nil, apperrors.NewValidationError("photo reference must start with places/")
	}

	var data []byte
	err := c.call(ctx, "places photo fetch", func(ctx context.Context) error {
		params := url.Values{}
		params.Set("maxHeightPx", fmt.Sprintf("%d", photoMaxHeightPx))
		params.Set("maxWidthPx", fmt.Sprintf("%d", photoMaxWidthPx))
		params.Set("key", c.apiKey)

		reqURL := fmt.Sprintf("%s/v1/%s/media?%s", c.baseURL, photoRef, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := statusToError(resp.StatusCode, "places photo fetch", photoRef); err != nil {
			return err
		}

		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetDetails fetches detail-level data for one place.
func (c *Client) GetDetails(ctx context.Context, externalID string) (*entities.PlaceDetails, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, apperrors.NewValidationError("place id is required")
	}

	var decoded placePayload
	err := c.call(ctx, "places details", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/places/"+url.PathEscape(externalID), nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

		decoded = placePayload{}
		return c.doJSON(req, "places details", externalID, &decoded)
	})
	if err != nil {
		return nil, err
	}

	candidate := decoded.toCandidate()
	return &entities.PlaceDetails{
		ExternalID:  candidate.ExternalID,
		Name:        candidate.Name,
		Address:     candidate.Address,
		Rating:      candidate.Rating,
		RatingCount: candidate.RatingCount,
		Location:    candidate.Location,
		Types:       candidate.Types,
	}, nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	return retry.DoWithLog(ctx, c.retryCfg, operation, fn, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Err(err).
			Msg("retrying provider call")
	})
}

func (c *Client) doJSON(req *http.Request, operation, resource string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode, operation, resource); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

// statusToError maps provider HTTP status codes onto the error taxonomy:
// 401/403 and 404 are fatal, everything non-2xx else is transient.
func statusToError(statusCode int, operation, resource string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return apperrors.NewProviderAuthError(operation)
	case statusCode == http.StatusNotFound:
		return apperrors.NewProviderNotFoundError(operation, resource)
	default:
		return fmt.Errorf("%s returned status %d", operation, statusCode)
	}
}
