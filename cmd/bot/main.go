package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"whopgen/internal/config"
	"whopgen/internal/database"
	"whopgen/internal/dedup"
	"whopgen/internal/events"
	"whopgen/internal/logger"
	"whopgen/internal/services/openai"
	"whopgen/internal/services/twitter"
	"whopgen/internal/services/whop"
	"whopgen/internal/worker"
	"whopgen/internal/worker/processors/assets"
	"whopgen/internal/worker/processors/provision"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database and dedup ledger
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ledger := dedup.NewGormLedger(db.DB)
	if len(cfg.SeedTriggerIDs) > 0 {
		if err := ledger.Seed(context.Background(), cfg.SeedTriggerIDs); err != nil {
			logger.Fatal("Failed to seed dedup ledger: %v", err)
		}
		logger.Info("Seeded dedup ledger with %d trigger id(s)", len(cfg.SeedTriggerIDs))
	}

	// Initialize external clients
	twitterClient := twitter.NewClient(cfg.TwitterBaseURL, cfg.TwitterAuthToken, cfg.TwitterCookie, cfg.TwitterCSRFToken, logger)
	openaiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, logger)
	whopClient := whop.NewClient(cfg.WhopBaseURL, cfg.WhopCookie, cfg.WhopCompanyID, cfg.ChatAppID, logger)

	// Wire the saga
	generator := assets.New(openaiClient, logger)
	saga := provision.New(generator, whopClient, twitterClient, logger)

	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	parser := worker.NewParser(cfg.BotHandle)
	w := worker.New(cfg, logger, twitterClient, parser, ledger, saga, publisher)

	// Start worker
	logger.Info("Starting bot...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down bot...")
	w.Stop()
}
