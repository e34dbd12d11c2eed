package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tickerpulse/tickerpulse/app/api"
	"github.com/tickerpulse/tickerpulse/app/cfg"
	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/scraper"
	"github.com/tickerpulse/tickerpulse/app/sentiment"
	"github.com/tickerpulse/tickerpulse/app/tasks"
	"github.com/tickerpulse/tickerpulse/app/universe"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting ticker news sentiment server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	universeConfig, err := universe.LoadConfig(appCfg.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load universe configuration: %v", err)
	}
	if !database.ValidIndex(appCfg.Universe) {
		log.Fatalf("Unknown universe: %s", appCfg.Universe)
	}

	articleRepo := database.NewArticleRepo(db)
	tickerRepo := database.NewTickerRepo(db)

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	fetcher := scraper.NewFetcher(httpClient, appCfg.UserAgent,
		time.Duration(appCfg.RequestTimeout)*time.Second)

	collector := scraper.NewCollector(
		scraper.NewGoogleFinanceSource(fetcher),
		scraper.NewYahooFinanceSource(fetcher),
		scraper.NewFinologySource(fetcher),
		scraper.NewRSSSource(fetcher, universeConfig.RSSFeeds),
	)
	dispatcher := tasks.NewDispatcher(collector, appCfg.WorkerCount)

	// Scoring without credentials is a setup defect; scoring can be
	// disabled entirely by clearing the endpoint.
	var sentimentClient *sentiment.Client
	if appCfg.SentimentURL != "" {
		sentimentClient, err = sentiment.NewClient(httpClient, appCfg.SentimentURL, appCfg.SentimentToken)
		if err != nil {
			log.Fatalf("Failed to configure sentiment client: %v", err)
		}
	} else {
		slog.Warn("Sentiment endpoint not configured, backfill disabled")
	}

	updater := universe.NewUpdater(fetcher, universeConfig.Indices)
	metadataFetcher := universe.NewMetadataFetcher(fetcher)
	extractor := scraper.NewContentExtractor()

	scheduler := tasks.NewScheduler(articleRepo, tickerRepo, dispatcher, sentimentClient,
		fetcher, extractor, updater, metadataFetcher)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(articleRepo, tickerRepo, dispatcher, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
