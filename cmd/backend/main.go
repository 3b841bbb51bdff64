// Package main provides the entry point for the LinkGuard URL shortener
// service: synchronous short URL creation and redirection, with background
// queues for URL validation and IP geolocation enrichment.
package main

import (
	"LinkGuard-Backend/internal/config"
	"LinkGuard-Backend/internal/database"
	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/geoip"
	httpHandler "LinkGuard-Backend/internal/handler/http"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository/cached"
	"LinkGuard-Backend/internal/repository/postgres"
	"LinkGuard-Backend/internal/service"
	"LinkGuard-Backend/internal/validator"
	"LinkGuard-Backend/internal/worker"
	"LinkGuard-Backend/pkg/logger"
	"LinkGuard-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkGuard service")

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Storage with a read cache on the hot redirect lookup
	storage := cached.New(postgres.New(db, log), cfg.URLShortener.CacheSize, cfg.URLShortener.CacheTTL)

	// Bounded event queues, one consumer loop each
	validationQueue := queue.New[events.URLValidationEvent]("validation", cfg.Queues.ValidationCapacity, log)
	geoQueue := queue.New[events.GeoLocationEvent]("geolocation", cfg.Queues.GeoLocationCapacity, log)

	// Collaborators
	urlValidator := validator.New(cfg.Validator.RequestTimeout, cfg.Validator.BlockedHosts, log)
	geoLocator := geoip.New(cfg.GeoIP.Endpoint, cfg.GeoIP.RequestTimeout, cfg.GeoIP.CacheSize, cfg.GeoIP.CacheTTL, log)
	uaParser, err := useragent.New("assets/regexes.yaml", log)
	if err != nil {
		log.Fatal("failed to initialize User-Agent parser", zap.Error(err))
	}

	// Background consumers
	validationConsumer := worker.NewValidationConsumer(validationQueue, urlValidator, storage, log)
	geoConsumer := worker.NewGeoLocationConsumer(geoQueue, geoLocator, storage, log)

	if err := validationConsumer.Start(); err != nil {
		log.Fatal("failed to start validation consumer", zap.Error(err))
	}
	if err := geoConsumer.Start(); err != nil {
		log.Fatal("failed to start geolocation consumer", zap.Error(err))
	}

	// Services
	shortener := service.NewShortener(storage, validationQueue, geoQueue, &cfg.URLShortener, log)
	redirectionLimiter := service.NewRedirectionLimiter(storage, &cfg.RateLimiter)
	redirection := service.NewRedirection(storage, redirectionLimiter, geoQueue, uaParser, log)

	// HTTP server
	queues := map[string]httpHandler.QueueInfo{
		"validation":  validationQueue,
		"geolocation": geoQueue,
	}
	server, err := httpHandler.NewServer(storage, shortener, redirection, queues, log, cfg.URLShortener.BaseURL, cfg.HTTPServer.CreateRate)
	if err != nil {
		log.Fatal("failed to create HTTP server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.ReadTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkGuard service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop accepting requests first, then drain the consumers. Queue
	// backlog that did not reach a consumer is dropped.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	validationConsumer.Stop()
	geoConsumer.Stop()
}
