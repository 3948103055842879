// Package postgres provides PostgreSQL implementations of the domain
// repositories. All saga-scoped writes go through these repositories so they
// can share one transaction via WithTx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/platform/persistence"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new wallet. A unique constraint on user_id rejects a second
// wallet for the same user.
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, balance, locked_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		w.ID,
		w.UserID,
		w.Balance,
		w.LockedBalance,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return wallet.ErrDuplicateWallet{UserID: w.UserID}
		}
		r.logger.Error("Failed to create wallet", "user_id", w.UserID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByUserID retrieves a wallet by its owning user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, user_id, balance, locked_balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.LockedBalance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get wallet", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// Lock moves amount from balance to locked_balance in a single conditional
// update. The balance >= amount guard plus the atomic decrement serialize
// concurrent sagas on the same wallet without an application-level lock.
func (r *WalletRepository) Lock(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $1, locked_balance = locked_balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING id, user_id, balance, locked_balance, created_at, updated_at
	`

	w, err := r.scanConditionalUpdate(ctx, query, amount, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Guard failed: either the wallet is missing or the balance is short
			if _, getErr := r.GetByUserID(ctx, userID); getErr != nil {
				return nil, getErr
			}
			return nil, wallet.ErrInsufficientFunds
		}
		r.logger.Error("Failed to lock wallet funds", "user_id", userID.String(), "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to lock wallet funds: %w", err)
	}

	return w, nil
}

// Settle removes amount from locked_balance, finalizing a spend. The credits
// already left balance at lock time.
func (r *WalletRepository) Settle(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Wallet, error) {
	query := `
		UPDATE wallets
		SET locked_balance = locked_balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND locked_balance >= $1
		RETURNING id, user_id, balance, locked_balance, created_at, updated_at
	`

	w, err := r.scanConditionalUpdate(ctx, query, amount, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByUserID(ctx, userID); getErr != nil {
				return nil, getErr
			}
			return nil, wallet.ErrInsufficientLocked
		}
		r.logger.Error("Failed to settle wallet funds", "user_id", userID.String(), "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to settle wallet funds: %w", err)
	}

	return w, nil
}

// Reverse returns amount from locked_balance to balance. Inside the saga this
// path is unused (rollback undoes the lock); it exists for callers whose lock
// outlives its originating transaction.
func (r *WalletRepository) Reverse(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $1, locked_balance = locked_balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND locked_balance >= $1
		RETURNING id, user_id, balance, locked_balance, created_at, updated_at
	`

	w, err := r.scanConditionalUpdate(ctx, query, amount, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByUserID(ctx, userID); getErr != nil {
				return nil, getErr
			}
			return nil, wallet.ErrInsufficientLocked
		}
		r.logger.Error("Failed to reverse wallet lock", "user_id", userID.String(), "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to reverse wallet lock: %w", err)
	}

	return w, nil
}

func (r *WalletRepository) scanConditionalUpdate(ctx context.Context, query string, amount int64, userID uuid.UUID) (*wallet.Wallet, error) {
	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, amount, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.LockedBalance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
