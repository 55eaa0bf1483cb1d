package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/api"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository/postgres"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting settlement API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Gateway client is constructed once and injected everywhere
	gatewayClient := gateway.NewClient(cfg.Gateway, logger)

	// Initialize services
	svcs := service.NewServices(cfg, repos, gatewayClient, logger)

	// Initialize router
	router := api.NewRouter(cfg, repos, svcs, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Outbox dispatcher: pending notifications and invoice renders are
	// delivered out of the request path
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	notifier := service.NewWebhookNotifier(cfg.NotifyTargetURL, logger)
	renderer := service.NewLogRenderer(logger)
	dispatcher := service.NewOutboxDispatcher(repos.Outbox, notifier, renderer, cfg.Outbox, logger)
	go service.RunOutboxDispatchLoop(dispatchCtx, dispatcher, cfg.Outbox.PollInterval, logger)
	logger.Info("Outbox dispatcher started",
		zap.Duration("poll_interval", cfg.Outbox.PollInterval),
		zap.Int("batch_size", cfg.Outbox.BatchSize),
	)

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopDispatch()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
