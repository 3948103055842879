package components

import (
	"context"
	"log/slog"

	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/saga/service"
)

// FailureRecorderImpl implements the FailureRecorder interface
type FailureRecorderImpl struct {
	requestRepo minting.RequestRepository
	logger      *slog.Logger
}

// NewFailureRecorder creates a new FailureRecorderImpl
func NewFailureRecorder(requestRepo minting.RequestRepository, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// RecordFailure writes a FAILED request row for a rolled-back saga. The
// PROCESSING row vanished with the rollback, so the upsert re-creates the row
// fresh; if a later retry already re-created the pair, its row is annotated
// instead.
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, cmd *shared.MintCommand, reason shared.FailureReason, errorMessage string) error {
	logger := r.logger
	if cmd.CorrelationID != "" {
		logger = r.logger.With("correlation_id", cmd.CorrelationID)
	}

	logger.Info("Recording failed mint attempt", "mint_id", cmd.MintID.String(), "reason", string(reason))

	request := minting.NewRequest(cmd)
	if err := r.requestRepo.UpsertFailed(ctx, request, errorMessage); err != nil {
		logger.Error("Failed to record mint failure", "mint_id", cmd.MintID.String(), "error", err)
		return err
	}

	logger.Info("Recorded FAILED mint request", "mint_id", cmd.MintID.String(), "reason", string(reason))
	return nil
}
