package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/platform/persistence"
)

// ReceiptRepository implements the minting.ReceiptRepository interface for
// PostgreSQL. The unique constraint on (user_id, idempotency_key) is the
// authoritative idempotency defense for the whole mint saga.
type ReceiptRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReceiptRepository creates a new PostgreSQL receipt repository
func NewReceiptRepository(logger *slog.Logger, db *persistence.PostgresDB) minting.ReceiptRepository {
	return &ReceiptRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ReceiptRepository) WithTx(tx pgx.Tx) minting.ReceiptRepository {
	return &ReceiptRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a mint receipt. Returns ErrDuplicateReceipt when a receipt
// for the same (user, idempotency key) pair already exists.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *minting.Receipt) error {
	query := `
		INSERT INTO mint_receipts (id, user_id, idempotency_key, mint_request_id, lock_ledger_entry_id, token_id, tx_hash, price_credits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		receipt.ID,
		receipt.UserID,
		receipt.IdempotencyKey,
		receipt.MintRequestID,
		receipt.LockLedgerEntryID,
		receipt.TokenID,
		receipt.TxHash,
		receipt.PriceCredits,
		receipt.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return minting.ErrDuplicateReceipt{UserID: receipt.UserID, IdempotencyKey: receipt.IdempotencyKey}
		}
		r.logger.Error("Failed to create mint receipt",
			"user_id", receipt.UserID.String(),
			"idempotency_key", receipt.IdempotencyKey,
			"error", err,
		)
		return fmt.Errorf("failed to create mint receipt: %w", err)
	}

	return nil
}

// GetByUserAndKey retrieves the receipt for an idempotency pair.
// Returns nil, nil when no receipt exists, enabling the fast-path check
// before the saga runs.
func (r *ReceiptRepository) GetByUserAndKey(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*minting.Receipt, error) {
	query := `
		SELECT id, user_id, idempotency_key, mint_request_id, lock_ledger_entry_id, token_id, tx_hash, price_credits, created_at
		FROM mint_receipts
		WHERE user_id = $1 AND idempotency_key = $2
	`

	var receipt minting.Receipt
	err := r.querier.QueryRow(ctx, query, userID, idempotencyKey).Scan(
		&receipt.ID,
		&receipt.UserID,
		&receipt.IdempotencyKey,
		&receipt.MintRequestID,
		&receipt.LockLedgerEntryID,
		&receipt.TokenID,
		&receipt.TxHash,
		&receipt.PriceCredits,
		&receipt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get mint receipt",
			"user_id", userID.String(),
			"idempotency_key", idempotencyKey,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get mint receipt: %w", err)
	}

	return &receipt, nil
}
