package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nft-minting-service/internal/config"
	"github.com/nft-minting-service/internal/data/mongo"
	"github.com/nft-minting-service/internal/data/postgres"
	"github.com/nft-minting-service/internal/generation"
	"github.com/nft-minting-service/internal/logger"
	"github.com/nft-minting-service/internal/mint_service"
	"github.com/nft-minting-service/internal/mint_service/service"
	"github.com/nft-minting-service/internal/platform/persistence"
	"github.com/nft-minting-service/internal/saga/components"
	saga "github.com/nft-minting-service/internal/saga/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("mint_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Mint Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	requestRepo := postgres.NewMintRequestRepository(log, postgresDB)
	receiptRepo := postgres.NewReceiptRepository(log, postgresDB)
	assetRepo := postgres.NewAssetRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize the generative image provider client
	generator := generation.NewHTTPGenerator(log, &cfg.Generator)

	// Initialize the mint saga with separated concerns
	mintingService := components.CreateMintingService(
		postgresDB,
		walletRepo,
		ledgerRepo,
		requestRepo,
		receiptRepo,
		assetRepo,
		outboxRepo,
		generator,
		log,
		cfg,
	)

	// Initialize services
	walletService := service.NewWalletService(walletRepo, ledgerRepo)
	mintService := service.NewMintService(log, mintingService, requestRepo)
	assetService := service.NewAssetService(assetRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize REST server
	server := mint_service.NewServer(log, cfg, walletService, mintService, assetService, auditService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting HTTP requests before tearing down the stores
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain in-flight sagas before closing the database pool
	if wpService, ok := mintingService.(*saga.WorkerPoolMintingService); ok {
		wpService.Shutdown()
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
