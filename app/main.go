package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teamnest/teamnest/app/api"
	"github.com/teamnest/teamnest/app/cfg"
	"github.com/teamnest/teamnest/app/database"
	"github.com/teamnest/teamnest/app/geocode"
	"github.com/teamnest/teamnest/app/platform"
	"github.com/teamnest/teamnest/app/sync"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Teamnest server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	sourceRepo := database.NewSourceRepo(db)
	eventRepo := database.NewEventRepo(db)
	geocodeRepo := database.NewGeocodeRepo(db)
	runRepo := database.NewSyncRunRepo(db)
	userRepo := database.NewUserRepo(db)

	registry := platform.NewRegistry(appCfg.PlatformsDir)
	if err := registry.Run(); err != nil {
		slog.Error("Failed to load platform registry", "error", err)
		os.Exit(1)
	}
	slog.Info("Platform registry loaded", "platforms", registry.GetPlatformCount())

	geocoder, err := geocode.NewClient(appCfg.GoogleMapsAPIKey, geocodeRepo,
		int64(appCfg.GeocodeConcurrency), appCfg.NearbyRadius)
	if err != nil {
		slog.Error("Failed to create geocoding client", "error", err)
		os.Exit(1)
	}
	if appCfg.GoogleMapsAPIKey == "" {
		slog.Info("Venue enrichment disabled (GOOGLE_MAPS_API_KEY not set)")
	}

	reconciler := sync.NewReconciler(sourceRepo, eventRepo, userRepo, registry, geocoder)
	orchestrator := sync.NewOrchestrator(sourceRepo, userRepo, runRepo, reconciler)

	// Scheduled bulk sync. Skipped runs still count: an overlapping
	// trigger finds sources pending and skips them individually.
	scheduler := cron.New()
	if appCfg.SyncSchedule != "" {
		_, err := scheduler.AddFunc(appCfg.SyncSchedule, func() {
			if _, err := orchestrator.RunAll(context.Background()); err != nil {
				slog.Error("Scheduled sync failed", "error", err)
			}
		})
		if err != nil {
			slog.Error("Invalid sync schedule", "schedule", appCfg.SyncSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("Sync scheduler started", "schedule", appCfg.SyncSchedule)
	} else {
		slog.Info("Sync scheduler disabled (SYNC_SCHEDULE empty)")
	}

	handler := api.NewHandler(sourceRepo, eventRepo, geocodeRepo, runRepo, registry, orchestrator)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
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
