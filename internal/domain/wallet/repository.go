package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines wallet persistence operations
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// Lock atomically moves amount from balance to locked_balance, guarded by
	// balance >= amount. The conditional update is the mutual-exclusion
	// primitive for concurrent sagas on the same wallet.
	// Returns ErrInsufficientFunds when the guard fails (no write occurs).
	Lock(ctx context.Context, userID uuid.UUID, amount int64) (*Wallet, error)

	// Settle atomically removes amount from locked_balance, guarded by
	// locked_balance >= amount.
	Settle(ctx context.Context, userID uuid.UUID, amount int64) (*Wallet, error)

	// Reverse atomically returns amount from locked_balance to balance.
	// Only needed when a lock outlives its originating transaction.
	Reverse(ctx context.Context, userID uuid.UUID, amount int64) (*Wallet, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrWalletNotFound indicates missing wallet
type ErrWalletNotFound struct {
	UserID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found for user: " + e.UserID.String()
}

// Is implements the errors.Is interface for ErrWalletNotFound
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}

// ErrDuplicateWallet indicates user uniqueness violation
type ErrDuplicateWallet struct {
	UserID uuid.UUID
}

func (e ErrDuplicateWallet) Error() string {
	return "wallet already exists for user: " + e.UserID.String()
}
