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

	"github.com/joho/godotenv"
	"github.com/repradar/repradar/internal/config"
	"github.com/repradar/repradar/internal/history"
	"github.com/repradar/repradar/internal/notifications"
	"github.com/repradar/repradar/internal/ratelimit"
	"github.com/repradar/repradar/internal/reddit"
	"github.com/repradar/repradar/internal/reports"
	"github.com/repradar/repradar/internal/scanner"
	"github.com/repradar/repradar/internal/scheduler"
	"github.com/repradar/repradar/internal/server"
	"github.com/repradar/repradar/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting RepRadar scan service")

	if cfg.ProviderAPIKey == "" {
		logrus.Warn("PROVIDER_API_KEY is not set; scan requests will be rejected until it is configured")
	}

	historyStore, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logrus.Fatalf("Failed to open scan history: %v", err)
	}
	defer historyStore.Close()

	// Archival is optional; without a storage account digests are only sent,
	// not archived.
	var archive storage.Interface
	if cfg.StorageAccount != "" {
		azure, err := storage.NewAzureStorage(context.Background(), cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive storage: %v", err)
		}
		archive = azure
	} else {
		logrus.Info("No storage account configured, digest archival disabled")
	}

	redditClient := reddit.NewClient(cfg.ProviderAPIKey, cfg.ProviderBaseURL)
	scanService := scanner.NewService(redditClient, cfg.ParallelFetch)

	notificationService := notifications.NewService(cfg)
	reportService := reports.NewService(cfg, historyStore, archive, notificationService)

	scanLimiter := ratelimit.NewScanLimiter()
	apiLimiter := ratelimit.NewAPILimiter()

	schedulerService := scheduler.NewService(cfg, reportService, historyStore, scanLimiter, apiLimiter)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	srv := server.New(scanService, historyStore, scanLimiter, apiLimiter)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // scans wait on two upstream fetches
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
