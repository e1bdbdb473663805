package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/venuescout/backend/internal/adapters/cache"
	"github.com/gatherly/venuescout/backend/internal/adapters/database"
	"github.com/gatherly/venuescout/backend/internal/api/handlers"
	"github.com/gatherly/venuescout/backend/internal/api/routes"
	"github.com/gatherly/venuescout/backend/internal/application/services"
	"github.com/gatherly/venuescout/backend/internal/domain/providers"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/googleplaces"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/openai"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/postgres"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/redis"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/observability"
	"github.com/gatherly/venuescout/backend/pkg/config"
)

func main() {

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - searches just lose result caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient, metrics)
	}

	// Initialize places provider
	placesClient, err := googleplaces.NewClient(&cfg.Places)
	if err != nil {
		log.Fatalf("Failed to initialize places client: %v", err)
	}
	log.Println("Places client initialized successfully")

	// Initialize relevance filter
	var relevanceProvider providers.RelevanceFilterProvider
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; relevance filtering disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			relevanceProvider = openaiClient
		}
	}

	// Initialize adapters
	venueAdapter := database.NewVenueAdapter(pgClient)
	likeAdapter := database.NewVenueLikeAdapter(pgClient)

	// Initialize services
	fanoutService := services.NewKeywordFanoutService(
		placesClient,
		cfg.Search.PerKeywordFetch,
		cfg.Search.SearchBiasRadius,
	)
	storeService := services.NewVenueStoreService(venueAdapter, cfg.Search.FreshnessDays)
	rankingService := services.NewSearchRankingService(nil)

	searchService := services.NewPlaceSearchService(
		fanoutService,
		storeService,
		rankingService,
		cacheProvider,
		likeAdapter,
		relevanceProvider,
		placesClient,
		cfg.Places.ProxyBaseURL,
		cfg.Search.TotalQuota,
		cfg.Search.FallbackBuffer,
		cfg.Search.CacheTTLSeconds,
	)
	likeService := services.NewPlaceLikeService(likeAdapter)
	photoService := services.NewPlacePhotoService(placesClient)

	// Initialize handlers
	searchHandler := handlers.NewPlaceSearchHandler(searchService)
	likeHandler := handlers.NewPlaceLikeHandler(likeService)
	photoHandler := handlers.NewPlacePhotoHandler(photoService)

	// Set up router
	router := routes.NewRouter(searchHandler, likeHandler, photoHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
