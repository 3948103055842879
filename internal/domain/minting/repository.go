package minting

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/shared"
)

// RequestRepository manages mint request persistence
type RequestRepository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	GetByUserAndKey(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.RequestStatus, errorMessage string) error

	// UpsertFailed records a FAILED request outside the saga transaction.
	// Used by the failure annotation path after rollback, where the
	// PROCESSING row written inside the transaction no longer exists.
	UpsertFailed(ctx context.Context, req *Request, errorMessage string) error

	WithTx(tx pgx.Tx) RequestRepository
}

// ReceiptRepository manages mint receipt persistence
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *Receipt) error
	GetByUserAndKey(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*Receipt, error)
	WithTx(tx pgx.Tx) ReceiptRepository
}

// ErrRequestNotFound indicates missing mint request
type ErrRequestNotFound struct {
	ID uuid.UUID
}

func (e ErrRequestNotFound) Error() string {
	return "mint request not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrRequestNotFound
func (e ErrRequestNotFound) Is(target error) bool {
	t, ok := target.(ErrRequestNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrDuplicateRequest indicates a request row for the same (user, idempotency
// key) pair already exists: a concurrent saga for the same logical operation
// got there first
type ErrDuplicateRequest struct {
	UserID         uuid.UUID
	IdempotencyKey string
}

func (e ErrDuplicateRequest) Error() string {
	return "mint request already recorded for user " + e.UserID.String() + " key " + e.IdempotencyKey
}

// ErrDuplicateReceipt indicates the (user, idempotency key) uniqueness
// constraint fired: a concurrent saga for the same logical operation already
// issued a receipt
type ErrDuplicateReceipt struct {
	UserID         uuid.UUID
	IdempotencyKey string
}

func (e ErrDuplicateReceipt) Error() string {
	return "receipt already issued for user " + e.UserID.String() + " key " + e.IdempotencyKey
}
