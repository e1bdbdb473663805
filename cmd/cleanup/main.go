package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gatherly/venuescout/backend/internal/adapters/database"
	"github.com/gatherly/venuescout/backend/internal/application/services"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/clients/postgres"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/observability"
	"github.com/gatherly/venuescout/backend/pkg/config"
)

// cleanupSchedule runs the retention sweep nightly at 03:00, when meeting
// traffic is lowest.
const cleanupSchedule = "0 3 * * *"

func main() {
	once := flag.Bool("once", false, "run one cleanup pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-cleanup", env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	venueAdapter := database.NewVenueAdapter(pgClient)
	cleanupService := services.NewVenueCleanupService(venueAdapter, cfg.Search.RetentionDays)

	runCleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := cleanupService.Run(ctx); err != nil {
			log.Printf("Cleanup pass failed: %v", err)
		}
	}

	if *once {
		runCleanup()
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cleanupSchedule, runCleanup); err != nil {
		log.Fatalf("Failed to schedule cleanup: %v", err)
	}
	scheduler.Start()
	log.Printf("Cleanup scheduler started (schedule %q)", cleanupSchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Cleanup scheduler shutting down...")
	<-scheduler.Stop().Done()
	log.Println("Cleanup scheduler stopped")
}
