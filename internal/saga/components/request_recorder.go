package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/saga/service"
)

// RequestRecorderImpl implements the RequestRecorder interface
type RequestRecorderImpl struct {
	requestRepo minting.RequestRepository
	logger      *slog.Logger
}

// NewRequestRecorder creates a new RequestRecorderImpl
func NewRequestRecorder(requestRepo minting.RequestRepository, logger *slog.Logger) service.RequestRecorder {
	return &RequestRecorderImpl{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// RecordRequest writes the PROCESSING request row for this saga attempt,
// taking over a FAILED row left by an earlier aborted attempt so retries
// re-enter the saga. The unique (user_id, idempotency_key) constraint makes
// this the first point where a concurrent duplicate saga loses the race.
func (r *RequestRecorderImpl) RecordRequest(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*minting.Request, error) {
	logger := r.logger
	if cmd.CorrelationID != "" {
		logger = r.logger.With("correlation_id", cmd.CorrelationID)
	}

	request := minting.NewRequest(cmd)
	if err := r.requestRepo.WithTx(tx).Create(ctx, request); err != nil {
		var dup minting.ErrDuplicateRequest
		if errors.As(err, &dup) {
			logger.Warn("Duplicate mint request for idempotency key", "mint_id", cmd.MintID.String(), "idempotency_key", cmd.IdempotencyKey)
			return nil, err
		}
		logger.Error("Failed to record mint request", "mint_id", cmd.MintID.String(), "error", err)
		return nil, fmt.Errorf("failed to record mint request %s: %w", cmd.MintID.String(), err)
	}
	logger.Info("Mint request recorded", "mint_id", request.ID.String(), "status", string(request.Status))

	return request, nil
}

// MarkCompleted moves the request row to COMPLETED inside the saga transaction
func (r *RequestRecorderImpl) MarkCompleted(ctx context.Context, tx pgx.Tx, request *minting.Request) error {
	if err := r.requestRepo.WithTx(tx).UpdateStatus(ctx, request.ID, shared.RequestStatusCompleted, ""); err != nil {
		r.logger.Error("Failed to mark mint request completed", "mint_id", request.ID.String(), "error", err)
		return fmt.Errorf("failed to mark mint request %s completed: %w", request.ID.String(), err)
	}

	request.Status = shared.RequestStatusCompleted
	return nil
}
