package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Places   PlacesConfig
	OpenAI   OpenAIConfig
	Search   SearchConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PlacesConfig holds Google Places API configuration
type PlacesConfig struct {
	APIKey       string
	BaseURL      string
	ProxyBaseURL string
	LanguageCode string
	RegionCode   string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// SearchConfig holds venue search pipeline knobs
type SearchConfig struct {
	TotalQuota       int
	FallbackBuffer   int
	CacheTTLSeconds  int
	FreshnessDays    int
	RetentionDays    int
	PerKeywordFetch  int
	SearchBiasRadius float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "venuescout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Places: PlacesConfig{
			APIKey:       getEnv("PLACES_API_KEY", ""),
			BaseURL:      getEnv("PLACES_BASE_URL", "https://places.googleapis.com"),
			ProxyBaseURL: getEnv("PLACES_PHOTO_PROXY_BASE_URL", "http://localhost:8080"),
			LanguageCode: getEnv("PLACES_LANGUAGE_CODE", "ko"),
			RegionCode:   getEnv("PLACES_REGION_CODE", "KR"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Search: SearchConfig{
			TotalQuota:       getEnvAsInt("SEARCH_TOTAL_QUOTA", 10),
			FallbackBuffer:   getEnvAsInt("SEARCH_FALLBACK_BUFFER", 5),
			CacheTTLSeconds:  getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 3600),
			FreshnessDays:    getEnvAsInt("VENUE_FRESHNESS_DAYS", 30),
			RetentionDays:    getEnvAsInt("VENUE_RETENTION_DAYS", 30),
			PerKeywordFetch:  getEnvAsInt("SEARCH_PER_KEYWORD_FETCH", 20),
			SearchBiasRadius: getEnvAsFloat("SEARCH_BIAS_RADIUS_METERS", 3000),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "venuescout"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
