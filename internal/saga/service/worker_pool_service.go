package service

import (
	"context"
	"log/slog"

	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// mintResult carries one saga outcome back to the submitting goroutine
type mintResult struct {
	receipt *minting.Receipt
	err     error
}

// WorkerPoolMintingService implements the MintingService interface. It bounds
// the number of concurrently executing sagas, which in turn bounds the number
// of open database transactions held across generation calls.
type WorkerPoolMintingService struct {
	baseService MintingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolMintingService(
	baseService MintingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolMintingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolMintingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ExecuteMint submits a mint saga to the worker pool and waits for its result.
func (s *WorkerPoolMintingService) ExecuteMint(ctx context.Context, cmd *shared.MintCommand) (*minting.Receipt, error) {
	logger := s.logger
	if cmd.CorrelationID != "" {
		logger = s.logger.With("correlation_id", cmd.CorrelationID)
	}

	logger.Info("Submitting mint saga to worker pool",
		"mint_id", cmd.MintID.String(),
		"user_id", cmd.UserID.String(),
	)

	// Buffered so the worker never blocks handing back the result
	resultChan := make(chan mintResult, 1)

	// Create a copy of the command to avoid data races
	cmdCopy := *cmd

	err := s.pool.Submit(func() {
		receipt, err := s.baseService.ExecuteMint(ctx, &cmdCopy)
		resultChan <- mintResult{receipt: receipt, err: err}
	})

	if err != nil {
		logger.Error("Failed to submit mint saga to worker pool",
			"mint_id", cmd.MintID.String(),
			"error", err,
		)
		return nil, err
	}

	result := <-resultChan
	return result.receipt, result.err
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolMintingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolMintingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolMintingService) Capacity() int {
	return s.pool.Cap()
}
