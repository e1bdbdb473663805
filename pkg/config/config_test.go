package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_PlacesConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("PLACES_API_KEY", "test-key")
	os.Setenv("PLACES_PHOTO_PROXY_BASE_URL", "https://api.example.com")
	defer func() {
		os.Unsetenv("PLACES_API_KEY")
		os.Unsetenv("PLACES_PHOTO_PROXY_BASE_URL")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Places.APIKey)
	assert.Equal(t, "https://api.example.com", cfg.Places.ProxyBaseURL)
	assert.Equal(t, "https://places.googleapis.com", cfg.Places.BaseURL)
	assert.Equal(t, "ko", cfg.Places.LanguageCode)
	assert.Equal(t, "KR", cfg.Places.RegionCode)
}

func TestLoad_SearchDefaults(t *testing.T) {
	os.Unsetenv("SEARCH_TOTAL_QUOTA")
	os.Unsetenv("SEARCH_FALLBACK_BUFFER")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.TotalQuota)
	assert.Equal(t, 5, cfg.Search.FallbackBuffer)
	assert.Equal(t, 30, cfg.Search.FreshnessDays)
	assert.Equal(t, 30, cfg.Search.RetentionDays)
	assert.Equal(t, 20, cfg.Search.PerKeywordFetch)
	assert.Equal(t, 3600, cfg.Search.CacheTTLSeconds)
}

func TestLoad_SearchOverrides(t *testing.T) {
	os.Setenv("SEARCH_TOTAL_QUOTA", "25")
	os.Setenv("VENUE_FRESHNESS_DAYS", "7")
	defer func() {
		os.Unsetenv("SEARCH_TOTAL_QUOTA")
		os.Unsetenv("VENUE_FRESHNESS_DAYS")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.TotalQuota)
	assert.Equal(t, 7, cfg.Search.FreshnessDays)
}
