package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-sync-service/internal/app"
	"hostel-sync-service/internal/infrastructure/config"
	"hostel-sync-service/internal/interface/httpapi"
	"hostel-sync-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	log.Info("Starting hostel sync service", "version", cfg.AppVersion, "mailSource", cfg.MailSource)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Fatal("Failed to initialise service", "error", err)
	}

	// Scheduled sync, only when an interval is configured
	if cfg.SyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SyncInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					log.Info("Scheduled sync stopped")
					return
				case <-ticker.C:
					for _, pipeline := range application.Router.Pipelines() {
						if _, err := application.Sync.Run(ctx, pipeline); err != nil {
							log.Error("Scheduled sync failed", "purpose", pipeline.Purpose().String(), "error", err)
						}
					}
				}
			}
		}()
	}

	var auth httpapi.Authorizer
	if cfg.MailSource == config.MailSourceGmail {
		auth = application.Provider
	}
	handler := httpapi.NewHandler(
		application.Sync,
		application.Router.Pipelines(),
		auth,
		application.Reminders,
		cfg.CronSecret,
		log,
	)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.Chain(mux, httpapi.Recovery(log), httpapi.Logging(log)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig.String())

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	application.Close(shutdownCtx)

	log.Info("Hostel sync service stopped")
}
