package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/aggregate"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/alerting"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/detector"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/enrich"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/pipeline"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/scoring"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/server"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/source"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	// Initialize storage
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize source adapters
	aggregator := aggregate.New(
		source.NewNewsAdapter(cfg.Sources.News),
		source.NewTwitterAdapter(cfg.Sources.Twitter),
		source.NewRedditAdapter(cfg.Sources.Reddit),
		source.NewRSSAdapter(cfg.Sources.RSS),
	)

	// Initialize enrichment
	scorer := scoring.NewClient(cfg.Scoring)
	enricher := enrich.New(scorer, scorer, cfg.Scoring.Concurrency)

	// Initialize detection and alerting
	det := detector.New(store)

	var notifier alerting.Notifier
	if cfg.Telegram.Enabled {
		telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
		notifier = telegramClient
	}
	alerts := alerting.New(store, notifier)

	pipe := pipeline.New(aggregator, enricher, store, det, alerts, cfg.Detection)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	// Scheduled ingestion loop
	if cfg.Ingestion.Enabled {
		go runIngestionLoop(ctx, pipe, cfg)
	}

	// Start HTTP server
	srv := server.New(pipe, alerts, det, store, cfg.Detection)
	logger.Info("Starting HTTP server on %s", cfg.Server.Addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(cfg.Server.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Service stopped")
	case err := <-errChan:
		logger.Fatal("HTTP server failed: %v", err)
	}
}

func runIngestionLoop(ctx context.Context, pipe *pipeline.Pipeline, cfg *config.Config) {
	logger.Info("Starting scheduled ingestion (query: %q, interval: %v)",
		cfg.Ingestion.Query, cfg.Ingestion.Interval)

	ticker := time.NewTicker(cfg.Ingestion.Interval)
	defer ticker.Stop()

	// Run initial ingestion immediately
	runIngestionCycle(ctx, pipe, cfg.Ingestion.Query)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runIngestionCycle(ctx, pipe, cfg.Ingestion.Query)
		}
	}
}

func runIngestionCycle(ctx context.Context, pipe *pipeline.Pipeline, query string) {
	startTime := time.Now()
	logger.Info("Starting ingestion cycle")

	result, err := pipe.Run(ctx, query)
	if err != nil {
		logger.Error("Ingestion cycle failed: %v", err)
		return
	}

	logger.Info("Ingestion cycle completed in %v (%d mentions, %d alerts)",
		time.Since(startTime), result.Count, len(result.Alerts))
}
