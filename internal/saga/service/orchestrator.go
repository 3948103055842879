// Package service orchestrates the paid mint saga: lock funds, record the
// request, generate and persist the asset, settle the charge, and issue the
// receipt. Every durable write of one attempt happens in a single PostgreSQL
// transaction, so a failure at any step leaves no partial state behind.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/generation"
)

type MintingServiceImpl struct {
	db              TxBeginner
	receiptRepo     minting.ReceiptRepository
	fundManager     FundManager
	requestRecorder RequestRecorder
	assetMinter     AssetMinter
	receiptIssuer   ReceiptIssuer
	failureRecorder FailureRecorder
	logger          *slog.Logger
}

func NewMintingService(
	db TxBeginner,
	receiptRepo minting.ReceiptRepository,
	fundManager FundManager,
	requestRecorder RequestRecorder,
	assetMinter AssetMinter,
	receiptIssuer ReceiptIssuer,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) MintingService {
	return &MintingServiceImpl{
		db:              db,
		receiptRepo:     receiptRepo,
		fundManager:     fundManager,
		requestRecorder: requestRecorder,
		assetMinter:     assetMinter,
		receiptIssuer:   receiptIssuer,
		failureRecorder: failureRecorder,
		logger:          logger,
	}
}

// ExecuteMint runs one mint saga. A retry of an already completed mint returns
// the original receipt without charging again; an aborted attempt returns
// ErrMintAborted after all of its writes were rolled back.
func (s *MintingServiceImpl) ExecuteMint(ctx context.Context, cmd *shared.MintCommand) (*minting.Receipt, error) {
	logger := s.logger
	if cmd.CorrelationID != "" {
		logger = s.logger.With("correlation_id", cmd.CorrelationID)
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Executing mint saga", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "price", cmd.PriceCredits)

	// Fast path: a committed receipt for this pair means the mint already
	// happened. The unique constraint on mint_receipts remains the backstop
	// for races this read cannot see.
	existing, err := s.receiptRepo.GetByUserAndKey(ctx, cmd.UserID, cmd.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing receipt: %w", err)
	}
	if existing != nil {
		logger.Info("Mint already completed, returning existing receipt", "user_id", cmd.UserID.String(), "idempotency_key", cmd.IdempotencyKey)
		return existing, nil
	}

	receipt, err := s.runSaga(ctx, cmd, logger)
	if err == nil {
		logger.Info("Mint saga committed", "mint_id", cmd.MintID.String(), "token_id", receipt.TokenID)
		return receipt, nil
	}

	return s.handleSagaFailure(ctx, cmd, err, logger)
}

// runSaga executes the saga steps inside one transaction. On any error the
// transaction is rolled back and the underlying cause is returned for
// classification by the caller.
func (s *MintingServiceImpl) runSaga(ctx context.Context, cmd *shared.MintCommand, logger *slog.Logger) (receipt *minting.Receipt, err error) {
	var tx pgx.Tx
	tx, err = s.db.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin mint transaction", "mint_id", cmd.MintID.String(), "error", err)
		return nil, fmt.Errorf("failed to begin mint transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back mint transaction", "panic", p, "mint_id", cmd.MintID.String())
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to rollback mint transaction", "rollback_error", rbErr, "original_error", err, "mint_id", cmd.MintID.String())
			}
		}
	}()

	lockEntry, err := s.fundManager.LockFunds(ctx, tx, cmd)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRecorder.RecordRequest(ctx, tx, cmd)
	if err != nil {
		return nil, err
	}

	minted, err := s.assetMinter.MintAsset(ctx, tx, cmd)
	if err != nil {
		return nil, err
	}

	if _, err = s.fundManager.SettleFunds(ctx, tx, cmd); err != nil {
		return nil, err
	}

	if err = s.requestRecorder.MarkCompleted(ctx, tx, request); err != nil {
		return nil, err
	}

	receipt, err = s.receiptIssuer.IssueReceipt(ctx, tx, cmd, lockEntry, minted)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit mint transaction", "mint_id", cmd.MintID.String(), "error", err)
		return nil, ErrMintAborted{MintID: cmd.MintID, Reason: shared.FailureReasonCommitFailed, Err: err}
	}

	return receipt, nil
}

// handleSagaFailure classifies a rolled-back saga's cause, annotates the
// attempt where appropriate, and maps duplicate-key races to the winning
// saga's receipt. Annotation runs after the rollback so it never contends
// with the aborted transaction's own row.
func (s *MintingServiceImpl) handleSagaFailure(ctx context.Context, cmd *shared.MintCommand, cause error, logger *slog.Logger) (*minting.Receipt, error) {
	// A unique violation on the request or receipt row means a concurrent
	// saga for the same pair got there first. Defer to the winner.
	var dupRequest minting.ErrDuplicateRequest
	var dupReceipt minting.ErrDuplicateReceipt
	if errors.As(cause, &dupRequest) || errors.As(cause, &dupReceipt) {
		return s.deferToWinner(ctx, cmd, logger)
	}

	switch {
	case errors.Is(cause, wallet.ErrInsufficientFunds):
		// Rejected before any durable state existed; no row to annotate
		logger.Warn("Mint rejected, insufficient credits", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "price", cmd.PriceCredits)
		return nil, ErrMintAborted{MintID: cmd.MintID, Reason: shared.FailureReasonInsufficientFunds, Err: cause}

	case errors.Is(cause, wallet.ErrWalletNotFound{}):
		s.annotateFailure(ctx, cmd, shared.FailureReasonWalletNotFound, cause, logger)
		return nil, ErrMintAborted{MintID: cmd.MintID, Reason: shared.FailureReasonWalletNotFound, Err: cause}

	case errors.Is(cause, generation.ErrGenerationFailed):
		s.annotateFailure(ctx, cmd, shared.FailureReasonGenerationFailed, cause, logger)
		return nil, ErrMintAborted{MintID: cmd.MintID, Reason: shared.FailureReasonGenerationFailed, Err: cause}
	}

	var aborted ErrMintAborted
	if errors.As(cause, &aborted) {
		s.annotateFailure(ctx, cmd, aborted.Reason, cause, logger)
		return nil, aborted
	}

	s.annotateFailure(ctx, cmd, shared.FailureReasonUnknownError, cause, logger)
	return nil, ErrMintAborted{MintID: cmd.MintID, Reason: shared.FailureReasonUnknownError, Err: cause}
}

// deferToWinner resolves a duplicate-key race by returning the concurrent
// winner's receipt. If the winner has not committed yet, the caller is told
// the mint is in flight.
func (s *MintingServiceImpl) deferToWinner(ctx context.Context, cmd *shared.MintCommand, logger *slog.Logger) (*minting.Receipt, error) {
	winner, err := s.receiptRepo.GetByUserAndKey(ctx, cmd.UserID, cmd.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read winning receipt after duplicate: %w", err)
	}
	if winner != nil {
		logger.Info("Concurrent mint won the race, deferring to its receipt", "user_id", cmd.UserID.String(), "idempotency_key", cmd.IdempotencyKey)
		return winner, nil
	}

	logger.Info("Concurrent mint in flight for idempotency key", "user_id", cmd.UserID.String(), "idempotency_key", cmd.IdempotencyKey)
	return nil, ErrMintInFlight
}

// annotateFailure records a FAILED request row for observability. Best effort:
// the saga outcome does not depend on it.
func (s *MintingServiceImpl) annotateFailure(ctx context.Context, cmd *shared.MintCommand, reason shared.FailureReason, cause error, logger *slog.Logger) {
	message := string(reason)
	if cause != nil {
		message = fmt.Sprintf("%s: %s", reason, cause.Error())
	}

	if err := s.failureRecorder.RecordFailure(ctx, cmd, reason, message); err != nil {
		logger.Error("Failed to annotate mint failure", "mint_id", cmd.MintID.String(), "reason", string(reason), "error", err)
	}
}
