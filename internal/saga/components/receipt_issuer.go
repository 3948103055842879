package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/audit"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/outbox"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/saga/service"
)

// ReceiptIssuerImpl implements the ReceiptIssuer interface
type ReceiptIssuerImpl struct {
	receiptRepo minting.ReceiptRepository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewReceiptIssuer creates a new ReceiptIssuerImpl
func NewReceiptIssuer(receiptRepo minting.ReceiptRepository, outboxRepo outbox.Repository, logger *slog.Logger) service.ReceiptIssuer {
	return &ReceiptIssuerImpl{
		receiptRepo: receiptRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// IssueReceipt creates the receipt row and queues the audit event in the
// outbox, both inside the saga transaction. The receipt row's unique
// constraint is the last line of defense against a duplicate mint.
func (i *ReceiptIssuerImpl) IssueReceipt(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand, lockEntry *ledger.Entry, minted *asset.Asset) (*minting.Receipt, error) {
	logger := i.logger
	if cmd.CorrelationID != "" {
		logger = i.logger.With("correlation_id", cmd.CorrelationID)
	}

	receipt := &minting.Receipt{
		ID:                uuid.New(),
		UserID:            cmd.UserID,
		IdempotencyKey:    cmd.IdempotencyKey,
		MintRequestID:     cmd.MintID,
		LockLedgerEntryID: lockEntry.ID,
		TokenID:           minted.TokenID,
		TxHash:            minted.TxHash,
		PriceCredits:      cmd.PriceCredits,
		CreatedAt:         time.Now(),
	}

	if err := i.receiptRepo.WithTx(tx).Create(ctx, receipt); err != nil {
		var dup minting.ErrDuplicateReceipt
		if errors.As(err, &dup) {
			logger.Warn("Receipt already issued for idempotency key", "mint_id", cmd.MintID.String(), "idempotency_key", cmd.IdempotencyKey)
			return nil, err
		}
		logger.Error("Failed to create mint receipt", "mint_id", cmd.MintID.String(), "error", err)
		return nil, fmt.Errorf("failed to create receipt for mint %s: %w", cmd.MintID.String(), err)
	}

	event := audit.NewMintEvent(cmd.UserID, cmd.MintID, minted.TokenID, minted.TxHash, cmd.PriceCredits, cmd.CorrelationID)
	message, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to build audit outbox message", "mint_id", cmd.MintID.String(), "error", err)
		return nil, fmt.Errorf("failed to build audit outbox message for mint %s: %w", cmd.MintID.String(), err)
	}

	if err := i.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to queue audit event", "mint_id", cmd.MintID.String(), "event_id", event.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to queue audit event for mint %s: %w", cmd.MintID.String(), err)
	}
	logger.Info("Receipt issued and audit event queued",
		"mint_id", cmd.MintID.String(),
		"receipt_id", receipt.ID.String(),
		"event_id", event.ID.String(),
		"outbox_id", message.ID,
	)

	return receipt, nil
}
