package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	saga "github.com/nft-minting-service/internal/saga/service"
)

// MintServiceImpl implements the MintService interface
type MintServiceImpl struct {
	mintingService saga.MintingService
	requestRepo    minting.RequestRepository
	logger         *slog.Logger
}

// NewMintService creates a new mint service
func NewMintService(logger *slog.Logger, mintingService saga.MintingService, requestRepo minting.RequestRepository) MintService {
	return &MintServiceImpl{
		mintingService: mintingService,
		requestRepo:    requestRepo,
		logger:         logger,
	}
}

// SubmitMint runs the mint saga synchronously and returns its receipt. The
// saga itself handles idempotent replays and concurrent duplicates; the
// caller sees either a receipt or a terminal error.
func (s *MintServiceImpl) SubmitMint(ctx context.Context, cmd *shared.MintCommand) (*minting.Receipt, error) {
	receipt, err := s.mintingService.ExecuteMint(ctx, cmd)
	if err != nil {
		s.logger.Error("Mint execution failed",
			"mint_id", cmd.MintID,
			"user_id", cmd.UserID,
			"idempotency_key", cmd.IdempotencyKey,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Mint executed",
		"mint_id", cmd.MintID,
		"user_id", cmd.UserID,
		"token_id", receipt.TokenID,
		"price_credits", receipt.PriceCredits,
	)

	return receipt, nil
}

// GetMintRequest retrieves a mint request's recorded state by its ID
func (s *MintServiceImpl) GetMintRequest(ctx context.Context, id uuid.UUID) (*minting.Request, error) {
	return s.requestRepo.GetByID(ctx, id)
}
