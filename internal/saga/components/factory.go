package components

import (
	"log/slog"

	"github.com/nft-minting-service/internal/config"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/outbox"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/generation"
	"github.com/nft-minting-service/internal/platform/persistence"
	"github.com/nft-minting-service/internal/saga/service"
)

// CreateMintingService creates a new MintingService with all its dependencies.
func CreateMintingService(
	pgDB *persistence.PostgresDB,
	walletRepo wallet.Repository,
	ledgerRepo ledger.Repository,
	requestRepo minting.RequestRepository,
	receiptRepo minting.ReceiptRepository,
	assetRepo asset.Repository,
	outboxRepo outbox.Repository,
	generator generation.Generator,
	logger *slog.Logger,
	cfg *config.Config,
) service.MintingService {
	fundManager := NewFundManager(walletRepo, ledgerRepo, logger)
	requestRecorder := NewRequestRecorder(requestRepo, logger)
	assetMinter := NewAssetMinter(generator, assetRepo, logger)
	receiptIssuer := NewReceiptIssuer(receiptRepo, outboxRepo, logger)
	failureRecorder := NewFailureRecorder(requestRepo, logger)

	baseService := service.NewMintingService(
		pgDB.Pool(),
		receiptRepo,
		fundManager,
		requestRecorder,
		assetMinter,
		receiptIssuer,
		failureRecorder,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolMintingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool minting service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
