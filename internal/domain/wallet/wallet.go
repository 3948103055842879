package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientFunds  = errors.New("insufficient credits for mint")
	ErrInsufficientLocked = errors.New("locked balance lower than settlement amount")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// Wallet tracks a user's spendable and reserved credits. Balance is the
// spendable portion; LockedBalance holds credits reserved by an in-flight mint
// until it settles or rolls back.
type Wallet struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Balance       int64     `json:"balance"`
	LockedBalance int64     `json:"locked_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewWallet creates a wallet for a user with an initial credit grant
func NewWallet(userID uuid.UUID, initialBalance int64) (*Wallet, error) {
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	return &Wallet{
		ID:            uuid.New(),
		UserID:        userID,
		Balance:       initialBalance,
		LockedBalance: 0,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

// Lock reserves amount by moving it from Balance to LockedBalance
func (w *Wallet) Lock(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if w.Balance < amount {
		return ErrInsufficientFunds
	}

	w.Balance -= amount
	w.LockedBalance += amount
	w.UpdatedAt = time.Now()
	return nil
}

// Settle finalizes a reservation by removing amount from LockedBalance.
// The credits already left Balance at lock time.
func (w *Wallet) Settle(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if w.LockedBalance < amount {
		return ErrInsufficientLocked
	}

	w.LockedBalance -= amount
	w.UpdatedAt = time.Now()
	return nil
}

// Reverse returns amount from LockedBalance to Balance, restoring the
// pre-lock state
func (w *Wallet) Reverse(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if w.LockedBalance < amount {
		return ErrInsufficientLocked
	}

	w.LockedBalance -= amount
	w.Balance += amount
	w.UpdatedAt = time.Now()
	return nil
}

// CanLock checks whether the wallet has enough spendable credits
func (w *Wallet) CanLock(amount int64) bool {
	return w.Balance >= amount
}
